package engine

import "context"

// Status 子任务单步结果
type Status int

const (
	StatusInvalid Status = iota
	StatusSuccess        // 完成
	StatusFailure        // 被取消或无法继续
	StatusRunning        // 下一帧继续
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusFailure:
		return "Failure"
	case StatusRunning:
		return "Running"
	default:
		return "Invalid"
	}
}

// StepFunc 子任务每帧执行一次
type StepFunc func(ctx context.Context, env *Env) Status

// Task 当前动作持有的跨帧子任务
// 由决策循环每帧推进一次，退出动作时同步取消
type Task struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	step   StepFunc
	status Status
}

func newTask(parent context.Context, name string, step StepFunc) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		step:   step,
		status: StatusRunning,
	}
}

// Name 所属动作
func (t *Task) Name() string {
	return t.name
}

// Status 最近一次推进的结果
func (t *Task) Status() Status {
	return t.status
}

// Done 已完成或已取消
func (t *Task) Done() bool {
	return t.status != StatusRunning
}

// Step 推进一帧；结束后不再执行
func (t *Task) Step(env *Env) Status {
	if t.Done() {
		return t.status
	}
	if t.ctx.Err() != nil {
		t.status = StatusFailure
		return t.status
	}
	t.status = t.step(t.ctx, env)
	return t.status
}

// Cancel 取消任务，可重复调用
func (t *Task) Cancel() {
	t.cancel()
	if t.status == StatusRunning {
		t.status = StatusFailure
	}
}
