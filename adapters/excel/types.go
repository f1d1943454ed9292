package excel

// SheetData is one worksheet: the first row is the header, the rest data.
// Every data row has exactly len(Headers) cells.
type SheetData struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// SheetSelection names the columns of one sheet that hold region values
type SheetSelection struct {
	Sheet   string   `json:"sheet"`
	Columns []string `json:"columns"`
}

// SheetSummary describes a sheet for column pickers
type SheetSummary struct {
	Name     string   `json:"name"`
	Headers  []string `json:"headers"`
	RowCount int      `json:"row_count"`
}
