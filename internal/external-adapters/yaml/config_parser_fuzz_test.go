package yaml

import (
	"testing"
)

// FuzzConfigParser feeds random and malformed step files to the parser.
//
// Run with: go test -fuzz=FuzzConfigParser -fuzztime=30s
func FuzzConfigParser(f *testing.F) {
	f.Add([]byte(`scan:
  severityThreshold: high
installations:
  - name: snyk
    version: latest
`))
	f.Add([]byte(`installations:
  - name: a
    nodes:
      agent: /opt/a
    verify:
      checksum: true
artifacts:
  s3:
    bucket: reports
`))

	f.Add([]byte(``))
	f.Add([]byte(`{}`))
	f.Add([]byte(`[]`))
	f.Add([]byte(`installations: 7`))
	f.Add([]byte("installations:\n  - name: a\n  - name: a\n"))

	parser := NewConfigParser()

	f.Fuzz(func(_ *testing.T, data []byte) {
		_, _ = parser.Parse(data)
	})
}
