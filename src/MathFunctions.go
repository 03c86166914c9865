package sheet

var calculateMax = func(args ...float64) (float64, error) {
	maxValue := args[0]
	for _, arg := range args[1:] {
		if arg > maxValue {
			maxValue = arg
		}
	}
	return maxValue, nil
}

var calculateMin = func(args ...float64) (float64, error) {
	minValue := args[0]
	for _, arg := range args[1:] {
		if arg < minValue {
			minValue = arg
		}
	}
	return minValue, nil
}

var calculateSum = func(args ...float64) (float64, error) {
	sum := args[0]
	for _, arg := range args[1:] {
		sum += arg
	}
	return sum, nil
}

var calculateAvg = func(args ...float64) (float64, error) {
	sum, err := calculateSum(args...)
	if err != nil {
		return 0, err
	}
	return sum / float64(len(args)), nil
}
