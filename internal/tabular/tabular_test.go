package tabular_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/uspacy-tools/uspacy-update/internal/tabular"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string

		wantHeader []string
		wantRows   [][]string
		wantErrIs  error
	}{
		"Simple": {
			content:    "cod_1c,oblast\n0001,Вінницька\n0002,Одеська\n",
			wantHeader: []string{"cod_1c", "oblast"},
			wantRows:   [][]string{{"0001", "Вінницька"}, {"0002", "Одеська"}},
		},
		"Cells trimmed": {
			content:    "cod_1c, title \n 0001 , Acme \n",
			wantHeader: []string{"cod_1c", "title"},
			wantRows:   [][]string{{"0001", "Acme"}},
		},
		"BOM stripped from first header cell": {
			content:    "\ufeffcod_1c,title\n0001,Acme\n",
			wantHeader: []string{"cod_1c", "title"},
			wantRows:   [][]string{{"0001", "Acme"}},
		},
		"Blank rows dropped": {
			content:    "cod_1c,title\n,\n0001,Acme\n",
			wantHeader: []string{"cod_1c", "title"},
			wantRows:   [][]string{{"0001", "Acme"}},
		},
		"Ragged rows allowed": {
			content:    "cod_1c,title,comment\n0001,Acme\n",
			wantHeader: []string{"cod_1c", "title", "comment"},
			wantRows:   [][]string{{"0001", "Acme"}},
		},
		"Header only": {
			content:    "cod_1c,title\n",
			wantHeader: []string{"cod_1c", "title"},
			wantRows:   nil,
		},

		"Empty file":   {content: "", wantErrIs: tabular.ErrEmptyFile},
		"Blank header": {content: ",\n0001,Acme\n", wantErrIs: tabular.ErrEmptyHeader},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "data.csv")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0600), "Setup: failed to write file")

			header, rows, err := tabular.Read(path)
			if tc.wantErrIs != nil {
				require.ErrorIs(t, err, tc.wantErrIs)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantHeader, header)
			require.Equal(t, tc.wantRows, rows)
		})
	}
}

func TestReadXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]string{"cod_1c", "oblast"}), "Setup: failed to write header")
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]string{"0001", "Вінницька"}), "Setup: failed to write row")
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]string{"0002", " Одеська "}), "Setup: failed to write row")
	require.NoError(t, f.SaveAs(path), "Setup: failed to save workbook")
	require.NoError(t, f.Close(), "Setup: failed to close workbook")

	header, rows, err := tabular.Read(path)
	require.NoError(t, err)
	require.Equal(t, []string{"cod_1c", "oblast"}, header)
	require.Equal(t, [][]string{{"0001", "Вінницька"}, {"0002", "Одеська"}}, rows)
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	t.Run("Unsupported extension", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.txt")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0600), "Setup: failed to write file")

		_, _, err := tabular.Read(path)
		require.ErrorIs(t, err, tabular.ErrUnsupportedType)
	})

	t.Run("Missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := tabular.Read(filepath.Join(t.TempDir(), "missing.csv"))
		require.Error(t, err)
	})
}
