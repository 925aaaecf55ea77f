package utils

import (
	"strconv"
	"strings"
)

// TruncateString shortens str to num characters, ending in "..." when cut.
func TruncateString(str string, num int) string {
	r := []rune(str)
	if len(r) <= num {
		return str
	}
	if num <= 3 {
		return string(r[:num])
	}
	return string(r[0:num-3]) + "..."
}

// ShortAddress keeps the head and tail of an address, e.g. 0xAb58...aeC9B.
func ShortAddress(addr string, keep int) string {
	if keep <= 0 || len(addr) <= 2*keep+3 {
		return addr
	}
	return addr[:keep] + "..." + addr[len(addr)-keep:]
}

func AddCommas(s string) string {
	if len(s) == 0 {
		return s
	}
	parts := strings.Split(s, ".")
	integerPart := parts[0]
	sign := ""
	if strings.HasPrefix(integerPart, "-") {
		sign = "-"
		integerPart = integerPart[1:]
	}

	n := len(integerPart)
	if n <= 3 {
		return s
	}

	var result strings.Builder
	result.WriteString(sign)
	remainder := n % 3
	if remainder > 0 {
		result.WriteString(integerPart[:remainder])
		result.WriteString(",")
	}
	for i := remainder; i < n; i += 3 {
		if i > remainder {
			result.WriteString(",")
		}
		result.WriteString(integerPart[i : i+3])
	}

	if len(parts) > 1 {
		result.WriteString(".")
		result.WriteString(parts[1])
	}
	return result.String()
}

// FormatCount renders a finding count with thousands separators.
func FormatCount(n int) string {
	return AddCommas(strconv.Itoa(n))
}
