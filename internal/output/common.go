package output

// TSVHeader is the header row of the text state table.
const TSVHeader = "category\tlabel\tcount\tfraction"
