package config

import (
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// ParseSourceOptions parses an inline JSON blob describing the source, e.g.
//
//	{"numRecords":1000,"keySize":8,"valueSize":{"min":4,"max":64}}
//
// Durations are Go duration strings ("10ms"). The result is validated
// before it is returned.
func ParseSourceOptions(blob string) (SourceOptions, error) {
	var o SourceOptions
	root, err := parseBlob(blob, "source options")
	if err != nil {
		return o, err
	}

	o.NumRecords = root.Get("numRecords").Int()
	if o.KeySize, err = sizeSpecJSON(root.Get("keySize"), "keySize"); err != nil {
		return o, err
	}
	if o.ValueSize, err = sizeSpecJSON(root.Get("valueSize"), "valueSize"); err != nil {
		return o, err
	}
	o.BundleSize = int(root.Get("bundleSize").Int())
	if o.InitialDelay, err = durationJSON(root.Get("initialDelay"), "initialDelay"); err != nil {
		return o, err
	}
	if o.DelayPerBundle, err = durationJSON(root.Get("delayPerBundle"), "delayPerBundle"); err != nil {
		return o, err
	}
	o.RecordsPerSecond = int(root.Get("recordsPerSecond").Int())
	o.Compressibility = root.Get("compressibility").Float()
	o.Seed = root.Get("seed").Int()

	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

// ParseStepOptions parses an inline JSON blob describing one step, e.g.
//
//	{"outputRecordsPerInputRecord":2,"failureProbability":0.1,
//	 "delay":{"type":"sleep","distribution":"uniform","min":"1ms","max":"5ms"}}
func ParseStepOptions(blob string) (StepOptions, error) {
	var o StepOptions
	root, err := parseBlob(blob, "step options")
	if err != nil {
		return o, err
	}

	if v := root.Get("outputRecordsPerInputRecord"); v.Exists() {
		n := int(v.Int())
		o.OutputPerInput = &n
	}
	o.FailureProbability = root.Get("failureProbability").Float()
	o.Seed = root.Get("seed").Int()

	if v := root.Get("delay"); v.Exists() {
		spec, err := delaySpecJSON(v)
		if err != nil {
			return o, err
		}
		o.Delay = &spec
	}

	if err := o.Validate(); err != nil {
		return o, err
	}
	return o, nil
}

func parseBlob(blob, what string) (gjson.Result, error) {
	if !gjson.Valid(blob) {
		return gjson.Result{}, fmt.Errorf("invalid JSON in %s", what)
	}
	root := gjson.Parse(blob)
	if !root.IsObject() {
		return gjson.Result{}, fmt.Errorf("%s must be a JSON object", what)
	}
	return root, nil
}

func sizeSpecJSON(v gjson.Result, name string) (SizeSpec, error) {
	switch {
	case !v.Exists():
		return SizeSpec{}, nil
	case v.Type == gjson.Number:
		return FixedSize(int(v.Int())), nil
	case v.IsObject():
		return RangeSize(int(v.Get("min").Int()), int(v.Get("max").Int())), nil
	default:
		return SizeSpec{}, fmt.Errorf("%s must be an integer or {min,max}", name)
	}
}

func durationJSON(v gjson.Result, name string) (time.Duration, error) {
	if !v.Exists() {
		return 0, nil
	}
	d, err := time.ParseDuration(v.String())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func delaySpecJSON(v gjson.Result) (DelaySpec, error) {
	var spec DelaySpec
	var err error

	spec.Type = DelayType(v.Get("type").String())
	spec.Distribution = Distribution(v.Get("distribution").String())
	if spec.Duration, err = durationJSON(v.Get("duration"), "delay.duration"); err != nil {
		return spec, err
	}
	if spec.Min, err = durationJSON(v.Get("min"), "delay.min"); err != nil {
		return spec, err
	}
	if spec.Max, err = durationJSON(v.Get("max"), "delay.max"); err != nil {
		return spec, err
	}
	for i, s := range v.Get("samples").Array() {
		d, err := durationJSON(s.Get("duration"), fmt.Sprintf("delay.samples[%d].duration", i))
		if err != nil {
			return spec, err
		}
		w := s.Get("weight").Float()
		if w == 0 {
			w = 1
		}
		spec.Samples = append(spec.Samples, DelaySample{Duration: d, Weight: w})
	}
	return spec, nil
}
