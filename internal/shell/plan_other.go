//go:build !windows

package shell

// DefaultPlan returns an empty plan; only Explorer keeps a flushable icon cache
func DefaultPlan() Plan {
	return Plan{}
}
