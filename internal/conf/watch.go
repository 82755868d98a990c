package conf

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/go-kratos/kratos/v2/log"
)

// Watcher 监听配置文件变化, 重新加载后回调
type Watcher struct {
	path     string
	fw       *fsnotify.Watcher
	onChange func(*Bootstrap)
}

// NewWatcher 监听目录而非文件本身, 编辑器保存时常常是替换文件
func NewWatcher(path string, onChange func(*Bootstrap)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return &Watcher{path: filepath.Clean(path), fw: fw, onChange: onChange}, nil
}

// Run 阻塞直到 ctx 结束
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fw.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.reload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			log.Warnf("config watcher error: %v", err)
		}
	}
}

// relevant 只关心本文件的写入和创建(替换保存)
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) reload() {
	c, err := Load(w.path)
	if err != nil {
		log.Warnf("config reload failed. path=%s err=%v", w.path, err)
		return
	}
	log.Infof("config reloaded. path=%s level=%s", w.path, c.Log.Level)
	if w.onChange != nil {
		w.onChange(c)
	}
}
