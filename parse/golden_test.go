package parse_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/syssam/veloxq/parse"

	"github.com/stretchr/testify/require"
)

func TestParseGolden(t *testing.T) {
	p := newParser(t)
	for _, name := range []string{"trip_search", "flight_update", "user_groups", "user_create"} {
		t.Run(name, func(t *testing.T) {
			f, err := os.Open(filepath.Join("testdata", "requests", name+".json"))
			require.NoError(t, err)
			defer f.Close()
			dec := json.NewDecoder(f)
			dec.UseNumber()
			var req parse.Request
			require.NoError(t, dec.Decode(&req))

			d, err := p.Parse(req)
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, name, []byte(d.String()+"\n"))
		})
	}
}
