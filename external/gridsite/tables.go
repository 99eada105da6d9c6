package gridsite

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/gridironlab/statline/internal/usecase"
)

// extractTables walks the parsed document and returns every <table> as
// header + body rows. The header comes from the first row that carries
// <th> cells; every other row lands in Rows.
func extractTables(body []byte) ([]usecase.RawTable, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var tables []usecase.RawTable
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "table" {
			if table, ok := parseTable(node); ok {
				tables = append(tables, table)
			}
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return tables, nil
}

func parseTable(tableNode *html.Node) (usecase.RawTable, bool) {
	var table usecase.RawTable

	var rows []*html.Node
	var collectRows func(*html.Node)
	collectRows = func(node *html.Node) {
		if node.Type == html.ElementNode && node.Data == "tr" {
			rows = append(rows, node)
			return
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			collectRows(child)
		}
	}
	collectRows(tableNode)

	for _, row := range rows {
		cells, isHeader := parseRow(row)
		if len(cells) == 0 {
			continue
		}
		if isHeader && table.Header == nil {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}

	if table.Header == nil && len(table.Rows) == 0 {
		return usecase.RawTable{}, false
	}
	return table, true
}

func parseRow(rowNode *html.Node) (cells []string, isHeader bool) {
	sawTH := false
	sawTD := false
	for child := rowNode.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode {
			continue
		}
		switch child.Data {
		case "th":
			sawTH = true
			cells = append(cells, nodeText(child))
		case "td":
			sawTD = true
			cells = append(cells, nodeText(child))
		}
	}
	return cells, sawTH && !sawTD
}

func nodeText(node *html.Node) string {
	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			builder.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return strings.Join(strings.Fields(builder.String()), " ")
}
