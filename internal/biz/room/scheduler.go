package room

import (
	"time"

	"github.com/yola1107/yut/internal/conf"
)

// Scheduler 请求截止时间的定时器
type Scheduler interface {
	Len() int                                 // 当前注册任务数量
	Once(delay time.Duration, f func()) int64 // 注册一次性任务, 已关闭时返回 -1
	Cancel(taskID int64)                      // 取消指定任务
	CancelAll()                               // 取消所有任务
	Stop()                                    // 停止调度器
}

// Executor 任务执行器, 定时回调投递到协程池
type Executor interface {
	Post(job func())
}

// NewScheduler 按配置创建调度器
func NewScheduler(c *conf.Room, exec Executor) Scheduler {
	switch c.Scheduler {
	case conf.SchedulerWheel:
		return NewWheelScheduler(exec, c.Tick)
	default:
		return NewHeapScheduler(exec)
	}
}

func executeAsync(executor Executor, f func()) {
	run := func() {
		defer RecoverFromError(nil)
		f()
	}
	if executor != nil {
		executor.Post(run)
	} else {
		go run()
	}
}
