// Mgmt
// Copyright (C) James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.
//
// Additional permission under GNU GPL version 3 section 7
//
// If you modify this program, or any covered work, by linking or combining it
// with embedded mcl code and modules (and that the embedded mcl code and
// modules which link with this program, contain a copy of their source code in
// the authoritative form) containing parts covered by the terms of any other
// license, the licensors of this program grant you additional permission to
// convey the resulting work. Furthermore, the licensors of this program grant
// the original author, James Shubin, additional permission to update this
// additional permission if he deems it necessary to achieve the goals of this
// additional permission.

// Package parser turns source code into instructions. The language is line
// based: each non-empty line is exactly one statement, which is matched
// against a fixed list of patterns.
package parser

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/rtfl-lang/rtfl/lang/ast"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"
)

// MaxLineSize is the longest line the parser accepts.
const MaxLineSize = 1024 * 1024

var (
	// statements
	patGlobalDef   = regexp.MustCompile(`^def[ ]*([a-zA-Z0-9_-]*)[ ]*=[ ]*(.*)$`)
	patLocalDef    = regexp.MustCompile(`^local[ ]*([a-zA-Z0-9_-]*)[ ]*=[ ]*(.*)$`)
	patAssign      = regexp.MustCompile(`^([a-zA-Z0-9_-]*)[ ]*=[ ]*(.*)$`)
	patUndef       = regexp.MustCompile(`^undef[ ]*([a-zA-Z0-9_-]*)$`)
	patReturn      = regexp.MustCompile(`^return (.*)$`)
	patIf          = regexp.MustCompile(`^if (.+)[ ]*\{$`)
	patWhile       = regexp.MustCompile(`^while (.+)[ ]*\{$`)
	patErrorGuard  = regexp.MustCompile(`^error ([a-zA-Z0-9_-]*)[ ]*\{$`)
	patFuncDef     = regexp.MustCompile(`^func ([a-zA-Z0-9_-]*)[ ]*\{$`)
	patFuncDefArgs = regexp.MustCompile(`^func[ ]+([a-zA-Z0-9_-]*)\([ ]*(.*)[ ]*\)[ ]*\{$`)
	patFuncUndef   = regexp.MustCompile(`^unfunc[ ]*([a-zA-Z0-9_-]*)$`)
	patAsync       = regexp.MustCompile(`^async[ ]*\{$`)
	patArrayAssign = regexp.MustCompile(`^(.+)[ ]*\[[ ]*(.+)[ ]*\][ ]*=[ ]*(.+)$`)
	patMapAssign   = regexp.MustCompile(`^(.+)->([a-zA-Z0-9_-]+)[ ]*=[ ]*(.+)$`)

	// statements and values
	patCall   = regexp.MustCompile(`^([a-zA-Z0-9_-]*)\((.*)\)$`)
	patMethod = regexp.MustCompile(`^(.+)\.([a-zA-Z0-9_-]+)(\((.*)\))?$`)

	// values
	patNumber      = regexp.MustCompile(`^(-?[0-9]*[.]?[0-9]*)?$`)
	patString      = regexp.MustCompile(`^"(.*)"$`)
	patVar         = regexp.MustCompile(`^([a-zA-Z0-9_.-]*)$`)
	patLogic       = regexp.MustCompile(`^!?\[[ ]*(.+)[ ]*(=|&|\||>|<)[ ]*(.+)[ ]*\]$`)
	patSimpleLogic = regexp.MustCompile(`^!?\[[ ]*(.+)[ ]*\]$`)
	patIndex       = regexp.MustCompile(`^(.+)[ ]*\[[ ]*(.+)[ ]*\]$`)
	patField       = regexp.MustCompile(`^(.+)->([a-zA-Z0-9_-]+)$`)
)

// SyntaxError is returned when a line can't be parsed.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

// Error returns the location and the message.
func (obj *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d %s", obj.File, obj.Line, obj.Msg)
}

// Parse reads source code and returns its instructions. The name is recorded
// as the origin file of each instruction.
func Parse(name string, r io.Reader) ([]interfaces.Instruction, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	p := &parser{file: name}
	instructions := []interfaces.Instruction{}
	for scanner.Scan() {
		p.line++
		inst, err := p.statement(scanner.Text())
		if err != nil {
			return nil, err
		}
		if inst != nil {
			instructions = append(instructions, inst)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return instructions, nil
}

// ParseString is Parse for code that is already in memory.
func ParseString(name, code string) ([]interfaces.Instruction, error) {
	return Parse(name, strings.NewReader(code))
}

// ParseValue parses a single value expression, such as the right hand side of
// an assignment.
func ParseValue(name string, line int, s string) (interfaces.Operand, error) {
	p := &parser{file: name, line: line}
	return p.value(s)
}

type parser struct {
	file string
	line int
}

func (obj *parser) errorf(format string, v ...interface{}) error {
	return &SyntaxError{
		File: obj.file,
		Line: obj.line,
		Msg:  fmt.Sprintf(format, v...),
	}
}

func (obj *parser) pos() ast.Pos { return ast.At(obj.file, obj.line) }

// statement parses one line. Blank lines and comments give nil.
func (obj *parser) statement(raw string) (interfaces.Instruction, error) {
	ln := trim(raw)
	ln = strings.TrimSuffix(ln, ";")
	if ln == "" || strings.HasPrefix(ln, "//") || strings.HasPrefix(ln, "#") {
		return nil, nil
	}

	if m := patGlobalDef.FindStringSubmatch(ln); m != nil {
		v, err := obj.value(m[2])
		if err != nil {
			return nil, err
		}
		return &ast.InstGlobalDef{Pos: obj.pos(), Name: m[1], Value: v}, nil
	}
	if m := patLocalDef.FindStringSubmatch(ln); m != nil {
		v, err := obj.value(m[2])
		if err != nil {
			return nil, err
		}
		return &ast.InstLocalDef{Pos: obj.pos(), Name: m[1], Value: v}, nil
	}
	if m := patArrayAssign.FindStringSubmatch(ln); m != nil {
		operands, err := obj.values(m[1], m[2], m[3])
		if err != nil {
			return nil, err
		}
		if !numeric(operands[1]) {
			return nil, obj.errorf("Non-number/bool value provided for logic expression")
		}
		return &ast.InstArrayAssign{Pos: obj.pos(), Array: operands[0], Index: operands[1], Value: operands[2]}, nil
	}
	if m := patMapAssign.FindStringSubmatch(ln); m != nil {
		operands, err := obj.values(m[1], m[3])
		if err != nil {
			return nil, err
		}
		return &ast.InstMapAssign{Pos: obj.pos(), Map: operands[0], Field: m[2], Value: operands[1]}, nil
	}
	if m := patAssign.FindStringSubmatch(ln); m != nil {
		v, err := obj.value(m[2])
		if err != nil {
			return nil, err
		}
		return &ast.InstAssign{Pos: obj.pos(), Name: m[1], Value: v}, nil
	}
	if m := patUndef.FindStringSubmatch(ln); m != nil {
		return &ast.InstUndef{Pos: obj.pos(), Name: m[1]}, nil
	}
	if m := patReturn.FindStringSubmatch(ln); m != nil {
		v, err := obj.value(m[1])
		if err != nil {
			return nil, err
		}
		return &ast.InstReturn{Pos: obj.pos(), Value: v}, nil
	}
	if m := patCall.FindStringSubmatch(ln); m != nil {
		args, err := obj.args(trim(m[2]))
		if err != nil {
			return nil, err
		}
		return &ast.InstCall{Pos: obj.pos(), Name: m[1], Args: args}, nil
	}
	if m := patMethod.FindStringSubmatch(ln); m != nil {
		name, args, err := obj.method(m)
		if err != nil {
			return nil, err
		}
		return &ast.InstCall{Pos: obj.pos(), Name: name, Args: args}, nil
	}
	if m := patIf.FindStringSubmatch(ln); m != nil {
		cond, err := obj.condition(m[1], "if")
		if err != nil {
			return nil, err
		}
		return &ast.InstIf{Pos: obj.pos(), Cond: cond}, nil
	}
	if m := patWhile.FindStringSubmatch(ln); m != nil {
		cond, err := obj.condition(m[1], "while")
		if err != nil {
			return nil, err
		}
		return &ast.InstWhile{Pos: obj.pos(), Cond: cond}, nil
	}
	if m := patErrorGuard.FindStringSubmatch(ln); m != nil {
		return &ast.InstErrorGuard{Pos: obj.pos(), Name: m[1]}, nil
	}
	if m := patFuncDef.FindStringSubmatch(ln); m != nil {
		return &ast.InstFuncDef{Pos: obj.pos(), Name: m[1]}, nil
	}
	if m := patFuncDefArgs.FindStringSubmatch(ln); m != nil {
		names, err := obj.argNames(m[2])
		if err != nil {
			return nil, err
		}
		return &ast.InstFuncDef{Pos: obj.pos(), Name: m[1], Args: names}, nil
	}
	if m := patFuncUndef.FindStringSubmatch(ln); m != nil {
		return &ast.InstFuncUndef{Pos: obj.pos(), Name: m[1]}, nil
	}
	if patAsync.MatchString(ln) {
		return &ast.InstAsync{Pos: obj.pos()}, nil
	}
	if ln == "}" {
		return &ast.InstEnd{Pos: obj.pos()}, nil
	}
	return nil, obj.errorf("Encountered invalid expression: %s", ln)
}

// condition parses the condition of an if or a while, which can't be a
// literal that isn't a number or a bool.
func (obj *parser) condition(s, keyword string) (interfaces.Operand, error) {
	cond, err := obj.value(s)
	if err != nil {
		return nil, err
	}
	if !numeric(cond) {
		return nil, obj.errorf("Non-number/bool value provided for '%s' instruction", keyword)
	}
	return cond, nil
}

// value parses a value expression.
func (obj *parser) value(raw string) (interfaces.Operand, error) {
	s := trim(raw)
	switch strings.ToLower(s) {
	case "null":
		return types.Null, nil
	case "true":
		return types.NewBool(true), nil
	case "false":
		return types.NewBool(false), nil
	}

	if m := patString.FindStringSubmatch(s); m != nil {
		return types.NewStr(unescape(m[1])), nil
	}
	if patNumber.MatchString(s) {
		return obj.number(s)
	}
	if m := patCall.FindStringSubmatch(s); m != nil {
		args, err := obj.args(trim(m[2]))
		if err != nil {
			return nil, err
		}
		return &ast.ExprCall{Name: m[1], Args: args}, nil
	}
	if m := patMethod.FindStringSubmatch(s); m != nil {
		name, args, err := obj.method(m)
		if err != nil {
			return nil, err
		}
		return &ast.ExprCall{Name: name, Args: args}, nil
	}
	if m := patVar.FindStringSubmatch(s); m != nil {
		return &ast.ExprVar{Name: m[1]}, nil
	}
	if m := patLogic.FindStringSubmatch(s); m != nil {
		return obj.logic(s, m)
	}
	if m := patSimpleLogic.FindStringSubmatch(s); m != nil {
		return obj.simpleLogic(s, m)
	}
	if m := patIndex.FindStringSubmatch(s); m != nil {
		operands, err := obj.values(m[1], m[2])
		if err != nil {
			return nil, err
		}
		if !numeric(operands[1]) {
			return nil, obj.errorf("Non-number value provided as array index")
		}
		return &ast.ExprIndex{Array: operands[0], Index: operands[1]}, nil
	}
	if m := patField.FindStringSubmatch(s); m != nil {
		v, err := obj.value(m[1])
		if err != nil {
			return nil, err
		}
		return &ast.ExprField{Map: v, Field: m[2]}, nil
	}
	return nil, obj.errorf("Encountered invalid value expression: %s", s)
}

// values parses several value expressions in order.
func (obj *parser) values(s ...string) ([]interfaces.Operand, error) {
	operands := []interfaces.Operand{}
	for _, x := range s {
		v, err := obj.value(x)
		if err != nil {
			return nil, err
		}
		operands = append(operands, v)
	}
	return operands, nil
}

// number parses a literal which matched the number pattern. A decimal point
// makes it a double.
func (obj *parser) number(s string) (interfaces.Operand, error) {
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, obj.errorf("Encountered invalid value expression: %s", s)
		}
		return types.NewDouble(f), nil
	}
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, obj.errorf("Encountered invalid value expression: %s", s)
	}
	return types.NewInt(int32(i)), nil
}

// method turns x.f(args) into the name f and the arguments x, args.
func (obj *parser) method(m []string) (string, []interfaces.Operand, error) {
	receiver, err := obj.value(m[1])
	if err != nil {
		return "", nil, err
	}
	args := []interfaces.Operand{receiver}
	if m[3] != "" {
		rest, err := obj.args(m[4])
		if err != nil {
			return "", nil, err
		}
		args = append(args, rest...)
	}
	return m[2], args, nil
}

func (obj *parser) logic(s string, m []string) (interfaces.Operand, error) {
	operands, err := obj.values(m[1], m[3])
	if err != nil {
		return nil, err
	}
	op, _ := ast.CmpOpFromChar(m[2]) // the pattern only lets valid ones in
	if op != ast.CmpEqual && !(numeric(operands[0]) && numeric(operands[1])) {
		return nil, obj.errorf("Non-number/bool value provided for logic expression")
	}
	return &ast.ExprCmp{
		Left:   operands[0],
		Op:     op,
		Right:  operands[1],
		Invert: strings.HasPrefix(s, "!"),
	}, nil
}

// simpleLogic handles [v] and ![v]. Literals are folded into a bool.
func (obj *parser) simpleLogic(s string, m []string) (interfaces.Operand, error) {
	v, err := obj.value(m[1])
	if err != nil {
		return nil, err
	}
	invert := strings.HasPrefix(s, "!")
	if _, ok := v.(interfaces.Expr); ok {
		if invert {
			return &ast.ExprNot{Inner: v}, nil
		}
		return v, nil
	}
	if x, ok := v.(types.Value); ok && types.IsNumber(x) {
		return types.NewBool(types.Truthy(x) != invert), nil
	}
	return nil, obj.errorf("Non-number/bool value provided for logic expression")
}

// args splits an argument list on the commas that aren't inside a string or
// inside parentheses or brackets, and parses each argument. A trailing empty
// argument is ignored.
func (obj *parser) args(s string) ([]interfaces.Operand, error) {
	operands := []interfaces.Operand{}
	chars := []rune(s)
	quoted := false
	depth := 0
	start := 0
	for i, c := range chars {
		if c == '"' && !escaped(chars, i) {
			quoted = !quoted
		}
		if quoted {
			continue
		}
		switch c {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth > 0 {
				continue
			}
			v, err := obj.value(string(chars[start:i]))
			if err != nil {
				return nil, err
			}
			operands = append(operands, v)
			start = i + 1
		}
	}
	if last := trim(string(chars[start:])); last != "" {
		v, err := obj.value(last)
		if err != nil {
			return nil, err
		}
		operands = append(operands, v)
	}
	return operands, nil
}

// argNames parses the argument names of a function definition. Trailing empty
// names are dropped, and an empty name in between leaves that position
// unnamed.
func (obj *parser) argNames(s string) ([]string, error) {
	raw := strings.Split(s, ",")
	for len(raw) > 0 && trim(raw[len(raw)-1]) == "" {
		raw = raw[:len(raw)-1]
	}
	var names []string
	for _, x := range raw {
		name := trim(x)
		if !patVar.MatchString(name) {
			return nil, obj.errorf("Argument name cannot contain special characters")
		}
		names = append(names, name)
	}
	return names, nil
}

// escaped returns true if the quote at i is escaped by a single backslash.
func escaped(chars []rune, i int) bool {
	if i < 1 || chars[i-1] != '\\' {
		return false
	}
	return !(i > 1 && chars[i-2] == '\\')
}

// numeric returns true for operands that can be used as a condition: numbers,
// bools and anything that is only known at run time.
func numeric(operand interfaces.Operand) bool {
	switch x := operand.(type) {
	case interfaces.Expr:
		return true
	case types.Value:
		return types.IsNumber(x)
	}
	return false
}

// unescape replaces the escape sequences of a string literal.
func unescape(s string) string {
	for _, r := range [][2]string{
		{`\\`, `\`},
		{`\"`, `"`},
		{`\n`, "\n"},
		{`\t`, "\t"},
		{`\r`, "\r"},
		{`\b`, "\b"},
		{`\f`, "\f"},
	} {
		s = strings.ReplaceAll(s, r[0], r[1])
	}
	return s
}

// trim removes whitespace and control characters from both ends.
func trim(s string) string {
	return strings.TrimFunc(s, func(r rune) bool { return r <= ' ' })
}
