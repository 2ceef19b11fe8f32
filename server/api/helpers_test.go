package api_test

import (
	"slices"
	"strconv"
)

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func slicesSort(s []string) { slices.Sort(s) }
