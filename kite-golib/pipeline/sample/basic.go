package sample

// Int wraps an int
type Int int

// SampleTag implements pipeline.Sample
func (Int) SampleTag() {}
