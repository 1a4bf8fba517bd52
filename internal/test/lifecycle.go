package test

import "go.uber.org/fx"

// LifecycleRecorder captures hooks appended to the fx lifecycle.
type LifecycleRecorder struct {
	Hooks []fx.Hook
}

func (r *LifecycleRecorder) Append(hook fx.Hook) {
	r.Hooks = append(r.Hooks, hook)
}

// ShutdownerStub records shutdown requests.
type ShutdownerStub struct {
	Called chan struct{}
}

func (s *ShutdownerStub) Shutdown(...fx.ShutdownOption) error {
	select {
	case s.Called <- struct{}{}:
	default:
	}
	return nil
}
