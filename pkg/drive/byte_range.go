package drive

import (
	"regexp"
	"strconv"
)

// ByteRange is a resolved request range over a resource of known size.
type ByteRange struct {
	Start int64
	End   int64
}

func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

var rangeHeaderRegex = regexp.MustCompile(`^bytes=(\d+)-(\d*)$`)

// ParseRangeHeader resolves a Range request header against size. The end
// offset defaults to size-1 when the client omits it. Anything unparsable or
// unsatisfiable returns ok=false and the caller serves the full body instead.
func ParseRangeHeader(value string, size int64) (ByteRange, bool) {
	parts := rangeHeaderRegex.FindStringSubmatch(value)
	if parts == nil {
		return ByteRange{}, false
	}

	start, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ByteRange{}, false
	}

	end := size - 1
	if parts[2] != "" {
		if end, err = strconv.ParseInt(parts[2], 10, 64); err != nil {
			return ByteRange{}, false
		}
	}
	if end >= size {
		end = size - 1
	}

	if start > end || start >= size {
		return ByteRange{}, false
	}

	return ByteRange{Start: start, End: end}, true
}
