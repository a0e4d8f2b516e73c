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

// Package coreos contains the file and process functions. Every file access
// goes through the filesystem of the runtime.
package coreos

import (
	"os"

	"github.com/rtfl-lang/rtfl/lang/funcs"
	"github.com/rtfl-lang/rtfl/lang/interfaces"
	"github.com/rtfl-lang/rtfl/lang/types"

	"github.com/spf13/afero"
)

const errPath = "Provided non-string path"

func init() {
	funcs.RegisterSimple("read_file", ReadFile)
	funcs.RegisterSimple("write_file", WriteFile)
	funcs.RegisterSimple("file_exists", stat(func(fi os.FileInfo) bool { return true }))
	funcs.RegisterSimple("is_file", stat(func(fi os.FileInfo) bool { return !fi.IsDir() }))
	funcs.RegisterSimple("is_directory", stat(func(fi os.FileInfo) bool { return fi.IsDir() }))
	funcs.RegisterSimple("delete_file", DeleteFile)
	funcs.RegisterSimple("list_files", ListFiles)
	funcs.RegisterSimple("create_directory", CreateDirectory)
	funcs.RegisterSimple("move_file", MoveFile)
}

func fs(scope interfaces.Scope) afero.Fs {
	return scope.Runtime().Env().Fs
}

// ReadFile returns the contents of a file.
func ReadFile(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, "Provided non-string argument")
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(fs(scope), path)
	if os.IsNotExist(err) {
		return nil, funcs.HostError("File \"%s\" does not exist", path)
	}
	if err != nil {
		return nil, funcs.HostError("Error reading file \"%s\": %v", path, err)
	}
	return types.NewStr(string(b)), nil
}

// WriteFile writes the display form of a value to a file. The optional third
// argument appends instead of replacing.
func WriteFile(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, errPath)
	if err != nil {
		return nil, err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if len(args) > 2 {
		b, ok := args[2].(*types.BoolValue)
		if !ok {
			return nil, funcs.TypeError("Provided non-bool type for append argument")
		}
		if b.V {
			flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		}
	}

	f, err := fs(scope).OpenFile(path, flags, 0644)
	if os.IsNotExist(err) {
		return nil, funcs.HostError("File \"%s\" does not exist", path)
	}
	if err != nil {
		return nil, funcs.HostError("Error writing to file \"%s\": %v", path, err)
	}
	if _, err := f.WriteString(types.Text(args[1])); err != nil {
		f.Close()
		return nil, funcs.HostError("Error writing to file \"%s\": %v", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, funcs.HostError("Error writing to file \"%s\": %v", path, err)
	}
	return types.Null, nil
}

// stat builds a predicate on a path. Missing paths are false.
func stat(fn func(os.FileInfo) bool) funcs.Simple {
	return func(args []types.Value, scope interfaces.Scope) (types.Value, error) {
		if err := funcs.Arity(args, 1); err != nil {
			return nil, err
		}
		path, err := funcs.Str(args, 0, errPath)
		if err != nil {
			return nil, err
		}
		fi, err := fs(scope).Stat(path)
		if err != nil {
			return types.NewBool(false), nil
		}
		return types.NewBool(fn(fi)), nil
	}
}

// DeleteFile removes a file or an empty directory.
func DeleteFile(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, errPath)
	if err != nil {
		return nil, err
	}
	fi, err := fs(scope).Stat(path)
	if err != nil {
		return nil, funcs.HostError("File \"%s\" does not exist", path)
	}
	if fi.IsDir() {
		names, err := afero.ReadDir(fs(scope), path)
		if err != nil {
			return nil, funcs.HostError("Error reading directory \"%s\": %v", path, err)
		}
		if len(names) > 0 {
			return nil, funcs.HostError("Cannot delete directories with files in them")
		}
	}
	if err := fs(scope).Remove(path); err != nil {
		return nil, funcs.HostError("Error deleting file \"%s\": %v", path, err)
	}
	return types.Null, nil
}

// ListFiles returns the sorted names of the entries in a directory.
func ListFiles(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, errPath)
	if err != nil {
		return nil, err
	}
	fi, err := fs(scope).Stat(path)
	if err != nil {
		return nil, funcs.HostError("Path \"%s\" does not exist", path)
	}
	if !fi.IsDir() {
		return nil, funcs.HostError("Path \"%s\" does not point to a directory", path)
	}
	infos, err := afero.ReadDir(fs(scope), path)
	if err != nil {
		return nil, funcs.HostError("Error reading directory \"%s\": %v", path, err)
	}
	arr := types.NewArray()
	for _, x := range infos {
		arr.Append(types.NewStr(x.Name()))
	}
	return arr, nil
}

// CreateDirectory creates a directory and any missing parents.
func CreateDirectory(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 1); err != nil {
		return nil, err
	}
	path, err := funcs.Str(args, 0, errPath)
	if err != nil {
		return nil, err
	}
	if err := fs(scope).MkdirAll(path, 0755); err != nil {
		return nil, funcs.HostError("Error creating directory \"%s\": %v", path, err)
	}
	return types.Null, nil
}

// MoveFile renames a file.
func MoveFile(args []types.Value, scope interfaces.Scope) (types.Value, error) {
	if err := funcs.Arity(args, 2); err != nil {
		return nil, err
	}
	from, err := funcs.Str(args, 0, errPath)
	if err != nil {
		return nil, err
	}
	to, err := funcs.Str(args, 1, errPath)
	if err != nil {
		return nil, err
	}
	if err := fs(scope).Rename(from, to); err != nil {
		return nil, funcs.HostError("Error moving file \"%s\": %v", from, err)
	}
	return types.Null, nil
}
