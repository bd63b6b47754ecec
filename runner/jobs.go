package runner

import (
	"bufio"
	"io"
	"strings"
)

// ReadURLs returns the non-blank lines of r, trimmed, in order.
func ReadURLs(r io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		urls = append(urls, line)
	}

	return urls, scanner.Err()
}
