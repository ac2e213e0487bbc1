package schema

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type rawFile struct {
	Models []*rawModel `@@*`
}

type rawModel struct {
	Pos     lexer.Position
	Name    string       `"model" @Ident "{"`
	Members []*rawMember `@@* "}"`
}

type rawMember struct {
	Block *rawAttr  `  "@@" @@`
	Field *rawField `| @@`
}

type rawField struct {
	Pos      lexer.Position
	Name     string     `@Ident`
	Type     string     `@Ident`
	List     bool       `( @"[" "]" )?`
	Optional bool       `@"?"?`
	Attrs    []*rawAttr `( "@" @@ )*`
}

type rawAttr struct {
	Pos  lexer.Position
	Name string    `@Ident`
	Args []*rawArg `( "(" ( @@ ( "," @@ )* )? ")" )?`
}

type rawArg struct {
	Name  string   `( @Ident ":" )?`
	Str   *string  `(  @String`
	Num   *string  ` | @Number`
	List  []string ` | "[" ( @Ident ( "," @Ident )* )? "]"`
	Ident string   ` | @Ident ( "(" ")" )? )`
}

func (a *rawAttr) stringArg() (string, bool) {
	for _, arg := range a.Args {
		if arg.Name == "" && arg.Str != nil {
			return *arg.Str, true
		}
	}
	return "", false
}

var parser = participle.MustBuild[rawFile](
	participle.Lexer(Lexer),
	participle.Elide("Whitespace", "Newline", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// Parse reads a schema file and builds a Registry from it.
//
// Recognized attributes are @map, @id, @updatedAt and @softDelete on fields
// and @@map and @@morph on models. Others are accepted and ignored. List
// fields are relations and do not map to columns.
func Parse(filename string, r io.Reader) (*Registry, error) {
	raw, err := parser.Parse(filename, r)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	models := make([]Model, 0, len(raw.Models))
	for _, rm := range raw.Models {
		m, err := rm.toModel()
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return NewRegistry(models...)
}

// ParseString is Parse over a string.
func ParseString(filename, src string) (*Registry, error) {
	return Parse(filename, strings.NewReader(src))
}

func (rm *rawModel) toModel() (Model, error) {
	m := Model{Name: rm.Name}
	for _, mem := range rm.Members {
		if mem.Block != nil {
			switch mem.Block.Name {
			case "map":
				table, ok := mem.Block.stringArg()
				if !ok {
					return Model{}, fmt.Errorf("%w: %s: @@map needs a string argument", ErrInvalidSchema, mem.Block.Pos)
				}
				m.Table = table
			case "morph":
				morph, ok := mem.Block.stringArg()
				if !ok {
					return Model{}, fmt.Errorf("%w: %s: @@morph needs a string argument", ErrInvalidSchema, mem.Block.Pos)
				}
				m.MorphType = morph
			}
			continue
		}

		rf := mem.Field
		if rf.List {
			continue
		}
		f := Field{Name: rf.Name, Type: rf.Type, Optional: rf.Optional}
		var softDelete, updatedAt bool
		for _, attr := range rf.Attrs {
			switch attr.Name {
			case "map":
				col, ok := attr.stringArg()
				if !ok {
					return Model{}, fmt.Errorf("%w: %s: @map needs a string argument", ErrInvalidSchema, attr.Pos)
				}
				f.Column = col
			case "id":
				f.ID = true
			case "softDelete":
				softDelete = true
			case "updatedAt":
				updatedAt = true
			}
		}
		if f.Column == "" {
			f.Column = SnakeCase(f.Name)
		}
		if softDelete {
			if m.SoftDelete != "" {
				return Model{}, fmt.Errorf("%w: %s: model %s has more than one @softDelete field", ErrInvalidSchema, rf.Pos, m.Name)
			}
			m.SoftDelete = f.Column
		}
		if updatedAt {
			if m.UpdatedAt != "" {
				return Model{}, fmt.Errorf("%w: %s: model %s has more than one @updatedAt field", ErrInvalidSchema, rf.Pos, m.Name)
			}
			m.UpdatedAt = f.Column
		}
		m.Fields = append(m.Fields, f)
	}
	return m, nil
}
