// Package autosave 按键去抖：同一个键在静默窗口内的多次触发只执行最后一次
package autosave

import (
	"sync"
	"time"
)

// DefaultWindow 默认静默窗口
const DefaultWindow = time.Second

// Debouncer 每个键最多持有一个待执行的定时器；同一个键的任务串行执行
type Debouncer struct {
	mu      sync.Mutex
	idle    *sync.Cond
	window  time.Duration
	pending map[string]*entry
	// running 记录正在执行的键，值为排在其后的下一个任务（可为 nil）
	running map[string]func()
	active  int
	seq     uint64
	stopped bool
}

type entry struct {
	gen   uint64
	timer *time.Timer
	fn    func()
}

// New 创建去抖器；window ≤ 0 时使用默认窗口
func New(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultWindow
	}
	d := &Debouncer{
		window:  window,
		pending: make(map[string]*entry),
		running: make(map[string]func()),
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger 取消该键上尚未执行的任务，并在窗口结束后执行 fn
func (d *Debouncer) Trigger(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}

	d.seq++
	gen := d.seq
	e := &entry{gen: gen, fn: fn}
	e.timer = time.AfterFunc(d.window, func() { d.fire(key, gen) })
	d.pending[key] = e
}

// fire 仅当该键的最新任务仍是 gen 时执行；Stop 与 AfterFunc 的竞争由 gen 兜住
func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || e.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	owner := d.scheduleLocked(key, e.fn)
	d.mu.Unlock()

	if owner {
		d.drain(key, e.fn)
	}
}

// scheduleLocked 该键空闲时由调用方执行 fn 并返回 true；
// 否则 fn 排在当前任务之后，替换掉更早排队的任务
func (d *Debouncer) scheduleLocked(key string, fn func()) bool {
	if _, busy := d.running[key]; busy {
		d.running[key] = fn
		return false
	}
	d.running[key] = nil
	d.active++
	return true
}

// drain 执行 fn 以及执行期间排队的后续任务，直到该键空闲
func (d *Debouncer) drain(key string, fn func()) {
	for fn != nil {
		fn()

		d.mu.Lock()
		fn = d.running[key]
		if fn == nil {
			delete(d.running, key)
			d.active--
			if d.active == 0 {
				d.idle.Broadcast()
			}
		} else {
			d.running[key] = nil
		}
		d.mu.Unlock()
	}
}

// Pending 等待执行的键数量
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Flush 立即执行所有待执行任务，并等待正在执行的任务全部结束
func (d *Debouncer) Flush() {
	type job struct {
		key string
		fn  func()
	}

	d.mu.Lock()
	jobs := make([]job, 0, len(d.pending))
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
		if d.scheduleLocked(key, e.fn) {
			jobs = append(jobs, job{key: key, fn: e.fn})
		}
	}
	d.mu.Unlock()

	for _, j := range jobs {
		d.drain(j.key, j.fn)
	}

	d.mu.Lock()
	for d.active > 0 {
		d.idle.Wait()
	}
	d.mu.Unlock()
}

// Stop 丢弃所有待执行任务，之后的 Trigger 不再生效；正在执行的任务不受影响
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}
