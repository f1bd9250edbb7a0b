package eval

// #region metric
// Metric captures a single invariant check result.
type Metric struct {
	Name  string
	Value float64
	Pass  bool
}

// #endregion metric

// #region result
// Result is the output of post-commit validation.
type Result struct {
	Passed  bool
	Metrics []Metric
	Reason  string
}

// #endregion result
