package service

import (
	"strconv"
	"strings"

	"butterfly-story/shared/interfaces"
)

const (
	idSuffixLen = 7
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// NewChoiceID builds "<unix millis>-<7 base36 chars>", the id shape the client always used.
func NewChoiceID(unixMilli int64, rng interfaces.RandomSource) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(unixMilli, 10))
	b.WriteByte('-')
	for i := 0; i < idSuffixLen; i++ {
		b.WriteByte(base36[rng.Intn(len(base36))])
	}
	return b.String()
}
