package pkttype

// Built-in packet types, matching the non-exhaustive list in the data
// model: EMPTY, ANY, ERROR, BOOLEAN, BYTE, IRANGE, DRANGE, STRING, BLOB,
// JSON_OBJECT, JSON_ARRAY, RGB, DIRECTION_VECTOR, LOCATION, TIMESTAMP,
// HTTP_RESPONSE.
var (
	Empty = &Type{Name: "EMPTY", Category: "ctl/empty", DataSize: 0}
	Any   = &Type{Name: "ANY", Category: "ctl/any", DataSize: 0}

	Error = &Type{Name: "ERROR", Category: "ctl/error", DataSize: 16, Members: []Member{
		{Name: "code", Type: "int", Offset: 0, Size: 8},
		{Name: "message", Type: "string", Offset: 8, Size: 8},
	}}

	Boolean = &Type{Name: "BOOLEAN", Category: "ctl/boolean", DataSize: 1}
	Byte    = &Type{Name: "BYTE", Category: "data/byte", DataSize: 1}

	IRange = &Type{Name: "IRANGE", Category: "data/number", DataSize: 16, Members: []Member{
		{Name: "val", Type: "int32", Offset: 0, Size: 4},
		{Name: "min", Type: "int32", Offset: 4, Size: 4},
		{Name: "max", Type: "int32", Offset: 8, Size: 4},
		{Name: "step", Type: "int32", Offset: 12, Size: 4},
	}}

	DRange = &Type{Name: "DRANGE", Category: "data/number", DataSize: 32, Members: []Member{
		{Name: "val", Type: "float64", Offset: 0, Size: 8},
		{Name: "min", Type: "float64", Offset: 8, Size: 8},
		{Name: "max", Type: "float64", Offset: 16, Size: 8},
		{Name: "step", Type: "float64", Offset: 24, Size: 8},
	}}

	String = &Type{Name: "STRING", Category: "data/string", DataSize: 8}

	Blob = &Type{Name: "BLOB", Category: "data/blob", DataSize: 24, Members: []Member{
		{Name: "mem", Type: "bytes", Offset: 0, Size: 8},
		{Name: "size", Type: "uint64", Offset: 8, Size: 8},
		{Name: "parent", Type: "blob", Offset: 16, Size: 8},
	}}

	JSONObject = &Type{Name: "JSON_OBJECT", Category: "data/json", DataSize: 8}
	JSONArray  = &Type{Name: "JSON_ARRAY", Category: "data/json", DataSize: 8}

	RGB = &Type{Name: "RGB", Category: "data/color", DataSize: 12, Members: []Member{
		{Name: "red", Type: "uint32", Offset: 0, Size: 4},
		{Name: "green", Type: "uint32", Offset: 4, Size: 4},
		{Name: "blue", Type: "uint32", Offset: 8, Size: 4},
	}}

	DirectionVector = &Type{Name: "DIRECTION_VECTOR", Category: "data/vector", DataSize: 32, Members: []Member{
		{Name: "x", Type: "float64", Offset: 0, Size: 8},
		{Name: "y", Type: "float64", Offset: 8, Size: 8},
		{Name: "z", Type: "float64", Offset: 16, Size: 8},
		{Name: "w", Type: "float64", Offset: 24, Size: 8},
	}}

	Location = &Type{Name: "LOCATION", Category: "data/location", DataSize: 24, Members: []Member{
		{Name: "lat", Type: "float64", Offset: 0, Size: 8},
		{Name: "lon", Type: "float64", Offset: 8, Size: 8},
		{Name: "alt", Type: "float64", Offset: 16, Size: 8},
	}}

	Timestamp = &Type{Name: "TIMESTAMP", Category: "data/time", DataSize: 16}

	HTTPResponse = &Type{Name: "HTTP_RESPONSE", Category: "net/http", DataSize: 24, Members: []Member{
		{Name: "code", Type: "int32", Offset: 0, Size: 4},
		{Name: "content_type", Type: "string", Offset: 8, Size: 8},
		{Name: "content", Type: "blob", Offset: 16, Size: 8},
	}}
)

func init() {
	for _, t := range []*Type{
		Empty, Any, Error, Boolean, Byte, IRange, DRange, String, Blob,
		JSONObject, JSONArray, RGB, DirectionVector, Location, Timestamp,
		HTTPResponse,
	} {
		mustRegister(t)
	}
}
