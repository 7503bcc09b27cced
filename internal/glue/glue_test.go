package glue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>

<?import javafx.scene.control.Button?>
<?import javafx.scene.layout.VBox?>
<!-- main view -->

<VBox spacing="4.0" xmlns:fx="http://javafx.com/fxml/1" fx:id="root" alignment="CENTER">
   <children>
      <Button text="A &amp; B" fx:id="ok" />
      <!-- spacer -->
      <Label>Hello</Label>
   </children>
</VBox>
`

func TestParse_PreservesAttributeAndChildOrder(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "VBox", root.Tag())
	assert.Equal(t, []string{"spacing", "xmlns:fx", "fx:id", "alignment"}, root.Attributes().Names())
	assert.Equal(t, 7, root.Line())

	children := root.Child(0)
	assert.Equal(t, "children", children.Tag())
	require.Equal(t, 3, children.ChildCount())
	assert.Equal(t, "Button", children.Child(0).Tag())
	assert.Equal(t, "A & B", children.Child(0).Attributes().Value("text"))
	assert.Equal(t, KindComment, children.Child(1).Kind())
	assert.Equal(t, " spacer ", children.Child(1).Text())
	assert.Equal(t, "Hello", children.Child(2).Text())
	assert.Same(t, children, children.Child(2).Parent())

	assert.Equal(t, []string{"javafx.scene.control.Button", "javafx.scene.layout.VBox"}, doc.Imports())
	assert.Len(t, doc.Header(), 3)
}

func TestSerialize_ByteIdenticalWithoutEdits(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	first := doc.String()

	again, err := Parse([]byte(first))
	require.NoError(t, err)
	assert.True(t, EqualDocuments(doc, again))
	assert.Equal(t, first, again.String())
}

func TestSerialize_Format(t *testing.T) {
	doc, err := Parse([]byte(`<A b="1"><c/><D>x &lt; y</D></A>`))
	require.NoError(t, err)
	want := `<?xml version="1.0" encoding="UTF-8"?>

<A b="1">
   <c />
   <D>x &lt; y</D>
</A>
`
	assert.Equal(t, want, doc.String())
}

func TestSerialize_EscapesAttributeValues(t *testing.T) {
	doc := NewDocument()
	root := NewElement(doc, "Label")
	root.Attributes().Set("text", "say \"hi\"\nnow")
	doc.SetRoot(root)

	out := doc.String()
	assert.Contains(t, out, `text="say &quot;hi&quot;&#10;now"`)

	back, err := Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, "say \"hi\"\nnow", back.Root().Attributes().Value("text"))
}

func TestSerialize_ScriptBodyUsesCDATA(t *testing.T) {
	doc := NewDocument()
	root := NewElement(doc, "fx:script")
	root.SetText("if (a < b) {\n  go();\n}")
	doc.SetRoot(root)

	out := doc.String()
	assert.Contains(t, out, "<![CDATA[")
	back, err := Parse([]byte(out))
	require.NoError(t, err)
	assert.Equal(t, root.Text(), back.Root().Text())
}

func TestSerialize_KeepsCarriageReturns(t *testing.T) {
	for _, src := range []string{`<a>x&#13;y</a>`, "<fx:script>a &lt; b&#13;\nc</fx:script>"} {
		doc, err := Parse([]byte(src))
		require.NoError(t, err)
		require.Contains(t, doc.Root().Text(), "\r")

		out := doc.String()
		assert.Contains(t, out, "&#13;")
		assert.NotContains(t, out, "<![CDATA[")
		again, err := Parse([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, doc.Root().Text(), again.Root().Text())
		assert.True(t, EqualDocuments(doc, again))
	}
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"mismatched":   "<A>\n  <B></C>\n</A>",
		"unterminated": "<A><B>",
		"empty":        "   ",
		"two roots":    "<A/><B/>",
		"stray text":   "<A/>junk",
		"dup attr":     `<A x="1" x="2"/>`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse([]byte(src))
			assert.Nil(t, doc)
			var pe *ParseError
			require.ErrorAs(t, err, &pe)
			assert.Positive(t, pe.Line)
			assert.NotEmpty(t, pe.Msg)
		})
	}
}

func TestParse_MismatchLocation(t *testing.T) {
	_, err := Parse([]byte("<A>\n  <B></C>\n</A>"))
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Line)
}

func TestAttributes_OrderSemantics(t *testing.T) {
	doc := NewDocument()
	e := NewElement(doc, "X")
	a := e.Attributes()
	a.Set("a", "1")
	a.Set("b", "2")
	a.Set("c", "3")

	a.Set("b", "20")
	assert.Equal(t, []string{"a", "b", "c"}, a.Names(), "update keeps position")

	a.Set("d", "4")
	assert.Equal(t, []string{"a", "b", "c", "d"}, a.Names(), "new keys append")

	v, idx, ok := a.Remove("b")
	require.True(t, ok)
	assert.Equal(t, "20", v)
	assert.Equal(t, 1, idx)

	a.Insert(idx, "b", v)
	assert.Equal(t, []Attr{{"a", "1"}, {"b", "20"}, {"c", "3"}, {"d", "4"}}, a.All())

	a.Insert(0, "d", "4")
	assert.Equal(t, []string{"d", "a", "b", "c"}, a.Names())

	a.Insert(99, "e", "5")
	assert.Equal(t, []string{"d", "a", "b", "c", "e"}, a.Names())

	_, _, ok = a.Remove("missing")
	assert.False(t, ok)
}

func TestElement_AttachTwiceFails(t *testing.T) {
	doc := NewDocument()
	p1 := NewElement(doc, "P1")
	p2 := NewElement(doc, "P2")
	c := NewElement(doc, "C")
	p1.Append(c)

	assert.Panics(t, func() { p2.Append(c) })
	assert.Equal(t, 0, c.Detach())
	assert.NotPanics(t, func() { p2.Append(c) })
	assert.Same(t, p2, c.Parent())
}

func TestElement_ForeignDocumentFails(t *testing.T) {
	a, b := NewDocument(), NewDocument()
	p := NewElement(a, "P")
	c := NewElement(b, "C")
	assert.Panics(t, func() { p.Append(c) })

	c.MoveToDocument(a)
	assert.NotPanics(t, func() { p.Append(c) })
	assert.Panics(t, func() { c.MoveToDocument(b) }, "attached elements cannot move")
}

func TestElement_CannotAttachIntoOwnSubtree(t *testing.T) {
	doc := NewDocument()
	outer := NewElement(doc, "Outer")
	inner := NewElement(doc, "Inner")
	outer.Append(inner)
	assert.Panics(t, func() { inner.Append(outer) })
}

func TestElement_InsertAndDetachPositions(t *testing.T) {
	doc := NewDocument()
	p := NewElement(doc, "P")
	a, b, c := NewElement(doc, "A"), NewElement(doc, "B"), NewElement(doc, "C")
	p.Append(a)
	p.Append(c)
	p.Insert(1, b)
	assert.Equal(t, []*Element{a, b, c}, p.Children())

	assert.Equal(t, 1, b.Detach())
	assert.Nil(t, b.Parent())
	assert.Equal(t, -1, b.Detach())
}

func TestElement_CloneIsDetachedAndEqual(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	orig := doc.Root().Child(0)
	c := orig.Clone()
	assert.Nil(t, c.Parent())
	assert.True(t, Equal(orig, c))
	assert.Same(t, c, c.Child(0).Parent())

	c.Child(0).Attributes().Set("text", "changed")
	assert.False(t, Equal(orig, c))
}

func TestDocument_AddImport(t *testing.T) {
	doc, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.False(t, doc.AddImport("javafx.scene.layout.VBox"))
	assert.True(t, doc.AddImport("javafx.scene.control.Label"))
	assert.Contains(t, doc.String(), "<?import javafx.scene.control.Label?>")
}

func FuzzParseRoundTrip(f *testing.F) {
	f.Add(sample)
	f.Add(`<A b="1"><c/><D>x</D><!--c--></A>`)
	f.Add(`<fx:root type="VBox" xmlns:fx="http://javafx.com/fxml"><Button/></fx:root>`)
	f.Add(`<a>x&#13;y</a>`)
	f.Add("<a>x&#13;\n<![CDATA[<b>]]></a>")

	f.Fuzz(func(t *testing.T, src string) {
		doc, err := Parse([]byte(src))
		if err != nil {
			return
		}
		out := doc.Bytes()
		again, err := Parse(out)
		if err != nil {
			t.Fatalf("serialized output does not parse: %v\n%s", err, out)
		}
		if !EqualDocuments(doc, again) {
			t.Fatalf("round trip changed the tree:\n%s", out)
		}
	})
}
