package index

import (
	"path/filepath"
	"testing"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const mainView = `<VBox xmlns:fx="http://javafx.com/fxml/1" fx:controller="example.Main">
   <Button fx:id="ok" onAction="#save" />
   <Label text="$ok.text" />
   <fx:include source="footer.fxml" />
</VBox>`

const footerView = `<HBox xmlns:fx="http://javafx.com/fxml/1">
   <Button fx:id="help" />
   <fx:reference source="help" />
</HBox>`

func build(t *testing.T, path string) *Index {
	t.Helper()
	ix, err := Create(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	for name, text := range map[string]string{"main.fxml": mainView, "footer.fxml": footerView} {
		d, err := fxom.Load([]byte(text))
		require.NoError(t, err)
		ix.AddDocument(name, d)
	}
	require.NoError(t, ix.Flush())
	return ix
}

func TestIndex_Files(t *testing.T) {
	ix := build(t, filepath.Join(t.TempDir(), "refs.db"))

	cases := map[string][]string{
		Token(KindClass, "Button"):            {"footer.fxml", "main.fxml"},
		Token(KindClass, "Label"):             {"main.fxml"},
		Token(KindID, "help"):                 {"footer.fxml"},
		Token(KindReference, "help"):          {"footer.fxml"},
		Token(KindInclude, "footer.fxml"):     {"main.fxml"},
		Token(KindHandler, "save"):            {"main.fxml"},
		Token(KindExpression, "ok"):           {"main.fxml"},
		Token(KindController, "example.Main"): {"main.fxml"},
	}
	for token, want := range cases {
		got, err := ix.Files(token)
		require.NoError(t, err)
		assert.Equal(t, want, got, token)
	}

	none, err := ix.Files(Token(KindID, "missing"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestIndex_VirtualTable(t *testing.T) {
	ix := build(t, "")

	t.Run("like", func(t *testing.T) {
		rows, err := ix.Query("SELECT token, path FROM fxom_refs WHERE token LIKE ?", "id:%")
		require.NoError(t, err)
		got := map[string]string{}
		for rows.Next() {
			var token, path string
			require.NoError(t, rows.Scan(&token, &path))
			got[token] = path
		}
		require.NoError(t, rows.Err())
		_ = rows.Close()
		assert.Equal(t, map[string]string{"id:ok": "main.fxml", "id:help": "footer.fxml"}, got)
	})

	t.Run("kind column", func(t *testing.T) {
		rows, err := ix.Query("SELECT DISTINCT kind FROM fxom_refs WHERE token GLOB ?", "class:*")
		require.NoError(t, err)
		var kinds []string
		for rows.Next() {
			var k string
			require.NoError(t, rows.Scan(&k))
			kinds = append(kinds, k)
		}
		require.NoError(t, rows.Err())
		_ = rows.Close()
		assert.Equal(t, []string{KindClass}, kinds)
	})

	t.Run("kind constraint", func(t *testing.T) {
		rows, err := ix.Query("SELECT token, path FROM fxom_refs WHERE kind = ? ORDER BY path, token", KindID)
		require.NoError(t, err)
		var got []string
		for rows.Next() {
			var token, path string
			require.NoError(t, rows.Scan(&token, &path))
			got = append(got, path+" "+token)
		}
		require.NoError(t, rows.Err())
		_ = rows.Close()
		assert.Equal(t, []string{"footer.fxml id:help", "main.fxml id:ok"}, got)
	})

	t.Run("token count", func(t *testing.T) {
		var n int
		require.NoError(t, ix.db.QueryRow("SELECT COUNT(*) FROM node_refs").Scan(&n))
		assert.Equal(t, 11, n)
	})
}

func TestIndex_CreateReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.db")
	first := build(t, path)
	require.NoError(t, first.Close())

	ix, err := Create(path, nil)
	require.NoError(t, err)
	defer func() { _ = ix.Close() }()
	got, err := ix.Files(Token(KindClass, "Button"))
	require.NoError(t, err)
	assert.Empty(t, got)
}
