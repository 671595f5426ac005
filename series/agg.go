package series

import "math"

// AggFunc reduces a group of values to one.
type AggFunc func(...float64) float64

func Mean(inData ...float64) float64 {
	if len(inData) == 0 {
		return math.NaN()
	}
	sum := Sum(inData...)
	return sum / float64(len(inData))
}

func Sum(inData ...float64) float64 {
	var sum float64
	for _, val := range inData {
		sum += val
	}
	return sum
}

func Max(inData ...float64) float64 {
	if len(inData) == 0 {
		return math.NaN()
	}
	max := inData[0]
	for _, val := range inData[1:] {
		if val > max {
			max = val
		}
	}
	return max
}

func Min(inData ...float64) float64 {
	if len(inData) == 0 {
		return math.NaN()
	}
	min := inData[0]
	for _, val := range inData[1:] {
		if val < min {
			min = val
		}
	}
	return min
}

func First(inData ...float64) float64 {
	if len(inData) == 0 {
		return math.NaN()
	}
	return inData[0]
}

// AggFuncByName maps a reducer name to its function.
func AggFuncByName(name string) (AggFunc, bool) {
	switch name {
	case "mean":
		return Mean, true
	case "sum":
		return Sum, true
	case "max":
		return Max, true
	case "min":
		return Min, true
	case "first":
		return First, true
	}
	return nil, false
}
