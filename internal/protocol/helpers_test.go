package protocol_test

import "strconv"

func itoa(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}
