package conf

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"

	"github.com/yola1107/yut/pkg/codes"
)

// 日志模式
const (
	ModeDev  = "dev"
	ModeProd = "prod"
)

// 掷棍方式
const (
	ThrowRandom = "random" // 随机掷棍
	ThrowManual = "manual" // 由外部指定结果(测试模式)
)

// 调度器类型
const (
	SchedulerHeap  = "heap"
	SchedulerWheel = "wheel"
)

type Bootstrap struct {
	Log  *Log  `yaml:"log" envPrefix:"LOG_"`
	Game *Game `yaml:"game" envPrefix:"GAME_"`
	Room *Room `yaml:"room" envPrefix:"ROOM_"`
}

type Log struct {
	Mode       string  `yaml:"mode" env:"MODE"`
	AppName    string  `yaml:"app_name" env:"APP_NAME"`
	Level      string  `yaml:"level" env:"LEVEL"`
	Directory  string  `yaml:"directory" env:"DIRECTORY"`
	FormatJson bool    `yaml:"format_json" env:"FORMAT_JSON"`
	ErrorFile  bool    `yaml:"error_file" env:"ERROR_FILE"`
	Record     bool    `yaml:"record" env:"RECORD"` // 每局一个记录文件
	Rotate     *Rotate `yaml:"rotate" envPrefix:"ROTATE_"`
}

type Rotate struct {
	MaxSizeMB  int  `yaml:"max_size_mb" env:"MAX_SIZE_MB"`
	MaxBackups int  `yaml:"max_backups" env:"MAX_BACKUPS"`
	MaxAgeDays int  `yaml:"max_age_days" env:"MAX_AGE_DAYS"`
	Compress   bool `yaml:"compress" env:"COMPRESS"`
	LocalTime  bool `yaml:"local_time" env:"LOCAL_TIME"`
}

type Game struct {
	Sides            int           `yaml:"sides" env:"SIDES"`
	Radius           float64       `yaml:"radius" env:"RADIUS"`
	TokensPerPlayer  int           `yaml:"tokens_per_player" env:"TOKENS_PER_PLAYER"`
	ThrowMode        string        `yaml:"throw_mode" env:"THROW_MODE"`
	Seed             int64         `yaml:"seed" env:"SEED"`
	DecisionTimeout  time.Duration `yaml:"decision_timeout" env:"DECISION_TIMEOUT"`
	RequireAck       bool          `yaml:"require_ack" env:"REQUIRE_ACK"`               // 击杀/跳过后等待确认
	AutoSelectSingle bool          `yaml:"auto_select_single" env:"AUTO_SELECT_SINGLE"` // 只有一个候选时不询问
	MaxThrows        int           `yaml:"max_throws" env:"MAX_THROWS"`                 // 单回合最多掷几次, 0 不限
}

type Room struct {
	LoopSize  int           `yaml:"loop_size" env:"LOOP_SIZE"`
	Scheduler string        `yaml:"scheduler" env:"SCHEDULER"`
	Tick      time.Duration `yaml:"tick" env:"TICK"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Bootstrap {
	return &Bootstrap{
		Log: &Log{
			Mode:      ModeDev,
			AppName:   "yut",
			Level:     "debug",
			Directory: "./logs",
			Rotate: &Rotate{
				MaxSizeMB:  100,
				MaxBackups: 7,
				MaxAgeDays: 7,
				Compress:   true,
				LocalTime:  true,
			},
		},
		Game: &Game{
			Sides:           4,
			Radius:          1,
			TokensPerPlayer: 4,
			ThrowMode:       ThrowRandom,
			DecisionTimeout: 30 * time.Minute,
		},
		Room: &Room{
			LoopSize:  1024,
			Scheduler: SchedulerHeap,
			Tick:      10 * time.Millisecond,
		},
	}
}

// Validate 检查配置
func (c *Bootstrap) Validate() error {
	if c == nil || c.Log == nil || c.Game == nil || c.Room == nil {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("missing section"))
	}
	if err := c.Game.Validate(); err != nil {
		return err
	}
	switch c.Log.Mode {
	case ModeDev, ModeProd:
	default:
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("log.mode %q", c.Log.Mode))
	}
	switch c.Room.Scheduler {
	case SchedulerHeap, SchedulerWheel:
	default:
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("room.scheduler %q", c.Room.Scheduler))
	}
	if c.Room.LoopSize <= 0 || c.Room.Tick <= 0 {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("room.loop_size=%d room.tick=%v", c.Room.LoopSize, c.Room.Tick))
	}
	return nil
}

func (g *Game) Validate() error {
	if g == nil {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("missing game section"))
	}
	if g.Sides < 3 {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("game.sides=%d, need >= 3", g.Sides))
	}
	if g.Radius <= 0 {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("game.radius=%v", g.Radius))
	}
	if g.TokensPerPlayer < 2 || g.TokensPerPlayer > 5 {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("game.tokens_per_player=%d, need 2-5", g.TokensPerPlayer))
	}
	switch g.ThrowMode {
	case ThrowRandom, ThrowManual:
	default:
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("game.throw_mode %q", g.ThrowMode))
	}
	if g.DecisionTimeout <= 0 || g.MaxThrows < 0 {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("game.decision_timeout=%v game.max_throws=%d", g.DecisionTimeout, g.MaxThrows))
	}
	return nil
}

func (g *Game) IsManual() bool { return g.ThrowMode == ThrowManual }

// Clone 深拷贝, 每个对局持有自己的一份
func (c *Bootstrap) Clone() *Bootstrap {
	out := &Bootstrap{}
	if err := copier.CopyWithOption(out, c, copier.Option{DeepCopy: true}); err != nil {
		return DefaultConfig()
	}
	return out
}

func (g *Game) Clone() *Game {
	out := &Game{}
	_ = copier.CopyWithOption(out, g, copier.Option{DeepCopy: true})
	return out
}
