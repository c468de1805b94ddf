package backend

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/iftodebogdan/gitechdemo/engine/renderer/metadata"
)

var (
	ErrEmptySource     = errors.New("empty shader source")
	ErrUnbalancedBlock = errors.New("unbalanced braces in shader source")
)

var (
	lineComment  = regexp.MustCompile(`//[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	directive    = regexp.MustCompile(`(?m)^\s*#[^\n]*$`)
	declaration  = regexp.MustCompile(`(?s)^(?:(?:uniform|const|extern|row_major|column_major)\s+)*` +
		`(\w+)\s+(\w+)\s*(?:\[\s*(\d+)\s*\])?\s*` +
		`(?::\s*register\s*\(\s*([bcis])(\d+)\s*\))?\s*(?:=.*)?$`)
	vectorType = regexp.MustCompile(`^(bool|int|float|half)([1-4])?(?:x([1-4]))?$`)
)

type reflectedDecl struct {
	constant metadata.ShaderConstant
	explicit bool
	letter   byte
}

/**
 * @brief Extracts the global constants of an HLSL source in declaration order,
 * assigning registers the way the D3D9 compiler does for unannotated globals:
 * numeric constants take consecutive float4 registers, samplers take
 * consecutive sampler slots, explicit register() bindings are honoured.
 * Static globals, functions and structs are not constants and are skipped.
 */
func ReflectConstants(source string) ([]metadata.ShaderConstant, error) {
	if strings.TrimSpace(source) == "" {
		return nil, ErrEmptySource
	}

	src := blockComment.ReplaceAllString(source, " ")
	src = lineComment.ReplaceAllString(src, " ")
	src = directive.ReplaceAllString(src, " ")

	statements, err := topLevelStatements(src)
	if err != nil {
		return nil, err
	}

	decls := make([]*reflectedDecl, 0, len(statements))
	for _, stmt := range statements {
		if d := parseDeclaration(stmt); d != nil {
			decls = append(decls, d)
		}
	}
	assignRegisters(decls)

	out := make([]metadata.ShaderConstant, len(decls))
	for i, d := range decls {
		out[i] = d.constant
	}
	return out, nil
}

// topLevelStatements returns the ';' terminated statements found outside of
// any block, keeping initializer blocks attached to their declaration.
func topLevelStatements(src string) ([]string, error) {
	var statements []string
	var current strings.Builder
	depth := 0
	keepBlock := false

	for _, r := range src {
		switch {
		case r == '{':
			if depth == 0 {
				pending := strings.TrimSpace(current.String())
				keepBlock = strings.HasSuffix(pending, "=") || strings.HasSuffix(pending, "sampler_state")
				if !keepBlock {
					current.Reset()
				}
			}
			depth++
		case r == '}':
			depth--
			if depth < 0 {
				return nil, ErrUnbalancedBlock
			}
		case r == ';' && depth == 0:
			if s := strings.TrimSpace(current.String()); s != "" {
				statements = append(statements, s)
			}
			current.Reset()
			keepBlock = false
		case depth == 0:
			current.WriteRune(r)
		default:
			if keepBlock {
				current.WriteRune(r)
			}
		}
	}
	if depth != 0 {
		return nil, ErrUnbalancedBlock
	}
	return statements, nil
}

func parseDeclaration(stmt string) *reflectedDecl {
	for _, f := range strings.Fields(stmt) {
		if f == "static" || f == "struct" || f == "typedef" {
			return nil
		}
	}

	m := declaration.FindStringSubmatch(stmt)
	if m == nil {
		return nil
	}
	typeName, name := m[1], m[2]

	elements := uint32(1)
	if m[3] != "" {
		n, err := strconv.ParseUint(m[3], 10, 32)
		if err != nil || n == 0 {
			return nil
		}
		elements = uint32(n)
	}

	c := metadata.ShaderConstant{Name: name, StructMembers: 0}
	d := &reflectedDecl{}

	switch strings.ToLower(typeName) {
	case "sampler":
		c.Type = metadata.INPUT_TYPE_SAMPLER
	case "sampler1d":
		c.Type = metadata.INPUT_TYPE_SAMPLER1D
	case "sampler2d":
		c.Type = metadata.INPUT_TYPE_SAMPLER2D
	case "sampler3d":
		c.Type = metadata.INPUT_TYPE_SAMPLER3D
	case "samplercube":
		c.Type = metadata.INPUT_TYPE_SAMPLERCUBE
	}

	if c.Type.IsSampler() {
		c.RegisterType = metadata.REGISTER_TYPE_SAMPLER
		c.Rows, c.Columns = 1, 1
		c.ArrayElements = elements
		c.RegisterCount = elements
		d.letter = 's'
	} else {
		v := vectorType.FindStringSubmatch(typeName)
		if v == nil {
			return nil
		}
		switch v[1] {
		case "bool":
			c.Type = metadata.INPUT_TYPE_BOOL
		case "int":
			c.Type = metadata.INPUT_TYPE_INT
		default:
			c.Type = metadata.INPUT_TYPE_FLOAT
		}
		c.Rows, c.Columns = 1, 1
		if v[2] != "" {
			n, _ := strconv.Atoi(v[2])
			c.Columns = uint32(n)
			if v[3] != "" {
				cols, _ := strconv.Atoi(v[3])
				c.Rows, c.Columns = uint32(n), uint32(cols)
			}
		}
		c.ArrayElements = elements
		c.RegisterCount = c.Rows * elements
		c.RegisterType = metadata.REGISTER_TYPE_FLOAT4
		d.letter = 'c'
	}

	if m[4] != "" {
		idx, _ := strconv.ParseUint(m[5], 10, 32)
		c.RegisterIndex = uint32(idx)
		d.explicit = true
		d.letter = m[4][0]
		switch d.letter {
		case 'b':
			c.RegisterType = metadata.REGISTER_TYPE_BOOL
		case 'i':
			c.RegisterType = metadata.REGISTER_TYPE_INT4
		case 's':
			c.RegisterType = metadata.REGISTER_TYPE_SAMPLER
		default:
			c.RegisterType = metadata.REGISTER_TYPE_FLOAT4
		}
	}

	c.SizeBytes = c.RegisterCount * metadata.REGISTER_SIZE_BYTES
	d.constant = c
	return d
}

type registerRange struct{ start, end uint32 }

func assignRegisters(decls []*reflectedDecl) {
	used := map[byte][]registerRange{}
	for _, d := range decls {
		if d.explicit {
			c := d.constant
			used[d.letter] = append(used[d.letter], registerRange{c.RegisterIndex, c.RegisterIndex + c.RegisterCount})
		}
	}
	for _, ranges := range used {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	}

	next := map[byte]uint32{}
	for _, d := range decls {
		if d.explicit {
			continue
		}
		idx := next[d.letter]
		for {
			collision := false
			for _, r := range used[d.letter] {
				if idx < r.end && idx+d.constant.RegisterCount > r.start {
					idx = r.end
					collision = true
				}
			}
			if !collision {
				break
			}
		}
		d.constant.RegisterIndex = idx
		next[d.letter] = idx + d.constant.RegisterCount
		used[d.letter] = append(used[d.letter], registerRange{idx, idx + d.constant.RegisterCount})
	}
}

// Describe renders a constant table for logs.
func Describe(constants []metadata.ShaderConstant) string {
	var sb strings.Builder
	for _, c := range constants {
		sb.WriteString(fmt.Sprintf("%s: type=%d reg=%d[%d..%d) rows=%d cols=%d elements=%d\n",
			c.Name, c.Type, c.RegisterType, c.RegisterIndex, c.RegisterIndex+c.RegisterCount,
			c.Rows, c.Columns, c.ArrayElements))
	}
	return sb.String()
}
