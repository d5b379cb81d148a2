package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/phrazzld/roadmap-api/internal/importer"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImporter struct {
	path, sheet string
	result      *importer.Result
	err         error
}

func (f *fakeImporter) ImportFile(ctx context.Context, path, sheet string) (*importer.Result, error) {
	f.path, f.sheet = path, sheet
	return f.result, f.err
}

func TestImportHandler_Parse(t *testing.T) {
	t.Parallel()
	log, _ := logger.NewTestLogger()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		imp := &fakeImporter{result: &importer.Result{Sheet: "Roadmap", Rows: 4, Teams: 1, Projects: 2, Tasks: 4}}
		h := NewImportHandler(imp, "resources/Sample1.xlsx", "Roadmap", log)

		w := serve(h.Parse, newJSONRequest(t, http.MethodGet, "/api/parse", nil, nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "resources/Sample1.xlsx", imp.path)
		assert.Equal(t, "Roadmap", imp.sheet)
		assert.Equal(t, *imp.result, decodeBody[importer.Result](t, w))
	})

	t.Run("bad row", func(t *testing.T) {
		t.Parallel()
		imp := &fakeImporter{err: fmt.Errorf("row 3: deadline: %w", importer.ErrBadHeader)}
		h := NewImportHandler(imp, "x.xlsx", "", log)

		w := serve(h.Parse, newJSONRequest(t, http.MethodGet, "/api/parse", nil, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, errorMessage(t, w), "row 3")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		imp := &fakeImporter{err: errors.New("failed to open spreadsheet /srv/data/x.xlsx: no such file")}
		h := NewImportHandler(imp, "/srv/data/x.xlsx", "", log)

		w := serve(h.Parse, newJSONRequest(t, http.MethodGet, "/api/parse", nil, nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "/srv/data")
	})
}
