package conf

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/yola1107/yut/pkg/codes"
)

// EnvPrefix 环境变量前缀, 如 YUT_GAME_SIDES=6
const EnvPrefix = "YUT_"

// Load 读取配置文件. 顺序: 默认值 <- 文件 <- 环境变量
// path 为空时只使用默认值和环境变量.
func Load(path string) (*Bootstrap, error) {
	c := &Bootstrap{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, codes.ErrInvalidConfig.WithCause(fmt.Errorf("read %s: %w", path, err))
		}
		if c, err = Parse(data); err != nil {
			return nil, err
		}
	} else if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return nil, codes.ErrInvalidConfig.WithCause(err)
	}
	if err := ApplyEnv(c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse 解析 yaml 并补全默认值(不校验)
func Parse(data []byte) (*Bootstrap, error) {
	c := &Bootstrap{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, codes.ErrInvalidConfig.WithCause(fmt.Errorf("parse yaml: %w", err))
	}
	if err := mergo.Merge(c, DefaultConfig()); err != nil {
		return nil, codes.ErrInvalidConfig.WithCause(fmt.Errorf("merge defaults: %w", err))
	}
	return c, nil
}

// ApplyEnv 用 YUT_ 前缀的环境变量覆盖
func ApplyEnv(c *Bootstrap) error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return codes.ErrInvalidConfig.WithCause(fmt.Errorf("parse env: %w", err))
	}
	return nil
}
