package skeleton

import (
	"testing"

	"github.com/agentic-research/fxom/internal/fxom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const view = `<VBox xmlns:fx="http://javafx.com/fxml/1" fx:controller="example.mainView">
   <Button fx:id="ok" onAction="#save" />
   <Button fx:id="apply" onAction="#save" />
   <TextField fx:id="name" onKeyTyped="#validate" />
   <fx:include fx:id="footer" source="footer.fxml" />
</VBox>`

func TestGenerate(t *testing.T) {
	d, err := fxom.Load([]byte(view))
	require.NoError(t, err)

	src, err := Generate(d, Options{Package: "ui", Source: "main.fxml"})
	require.NoError(t, err)

	want := "// Code generated by fxom skeleton. Edit freely.\n" +
		"\n" +
		"package ui\n" +
		"\n" +
		"// MainView controls main.fxml.\n" +
		"type MainView struct {\n" +
		"\tOk               any `fxml:\"ok\"`               // Button\n" +
		"\tApply            any `fxml:\"apply\"`            // Button\n" +
		"\tName             any `fxml:\"name\"`             // TextField\n" +
		"\tFooter           any `fxml:\"footer\"`           // include footer.fxml\n" +
		"\tFooterController any `fxml:\"footerController\"` // controller of footer.fxml\n" +
		"}\n" +
		"\n" +
		"// Initialize runs once the fields are injected.\n" +
		"func (c *MainView) Initialize() {}\n" +
		"\n" +
		"// Save handles onAction of ok, onAction of apply.\n" +
		"func (c *MainView) Save(event any) {}\n" +
		"\n" +
		"// Validate handles onKeyTyped of name.\n" +
		"func (c *MainView) Validate(event any) {}\n"
	assert.Equal(t, want, string(src))
}

func TestGenerate_Defaults(t *testing.T) {
	d, err := fxom.Load([]byte(`<Pane />`))
	require.NoError(t, err)

	src, err := Generate(d, Options{})
	require.NoError(t, err)
	assert.Contains(t, string(src), "package controller")
	assert.Contains(t, string(src), "type Controller struct")
	assert.Contains(t, string(src), "func (c *Controller) Initialize() {}")
}

func TestGenerate_EmptyDocument(t *testing.T) {
	_, err := Generate(fxom.NewDocument(), Options{})
	assert.Error(t, err)
}
