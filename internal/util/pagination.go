package util

import "strconv"

const PageSize = 20

// ParsePage accepts only positive integers.
func ParsePage(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	page, err := strconv.Atoi(s)
	if err != nil || page < 1 {
		return 0, false
	}
	return page, true
}

// ParseUint reads a positive numeric path parameter.
func ParseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func Calculate(page int) (offset int, limit int) {
	offset = PageSize * (page - 1)
	if offset < PageSize {
		offset = 0
	}
	return offset, PageSize
}
