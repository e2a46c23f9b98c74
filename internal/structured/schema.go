package structured

import "google.golang.org/genai"

// Def is the backend schema type, aliased so callers need not import genai.
type Def = genai.Schema

// Object describes a JSON object with the listed required properties.
func Object(properties map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{
		Type:       genai.TypeObject,
		Properties: properties,
		Required:   required,
	}
}

func String(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description}
}

// NullableString is a string the model may set to null.
func NullableString(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Description: description, Nullable: genai.Ptr(true)}
}

func Bool(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeBoolean, Description: description}
}

// Integer describes an integer within [minimum, maximum].
func Integer(description string, minimum, maximum float64) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: description,
		Minimum:     genai.Ptr(minimum),
		Maximum:     genai.Ptr(maximum),
	}
}

// NullableInteger is an integer no smaller than minimum that the model may set to null.
func NullableInteger(description string, minimum float64) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeInteger,
		Description: description,
		Minimum:     genai.Ptr(minimum),
		Nullable:    genai.Ptr(true),
	}
}

// Number describes a floating point value within [minimum, maximum].
func Number(description string, minimum, maximum float64) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeNumber,
		Description: description,
		Minimum:     genai.Ptr(minimum),
		Maximum:     genai.Ptr(maximum),
	}
}

// Enum describes a string restricted to values.
func Enum(description string, values ...string) *genai.Schema {
	return &genai.Schema{
		Type:        genai.TypeString,
		Description: description,
		Format:      "enum",
		Enum:        values,
	}
}

func Array(items *genai.Schema, description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: items, Description: description}
}

// FixedArray describes an array with exactly n items.
func FixedArray(items *genai.Schema, description string, n int64) *genai.Schema {
	schema := Array(items, description)
	schema.MinItems = genai.Ptr(n)
	schema.MaxItems = genai.Ptr(n)
	return schema
}

// Strings is shorthand for an array of strings.
func Strings(description string) *genai.Schema {
	return Array(&genai.Schema{Type: genai.TypeString}, description)
}
