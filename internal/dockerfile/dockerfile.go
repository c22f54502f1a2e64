// Package dockerfile provides a small programmatic Dockerfile writer.
// Instructions are appended in order and rendered to a stable string,
// so regenerating an unchanged recipe produces a byte-identical file.
package dockerfile

import (
	"fmt"
	"sort"
	"strings"
)

// File is a Dockerfile under construction.
type File struct {
	header string
	blocks []string
}

// New creates an empty Dockerfile.
func New() *File {
	return &File{}
}

// Header sets a comment emitted before the first instruction.
func (f *File) Header(lines ...string) *File {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString("# " + l + "\n")
	}
	f.header = b.String()
	return f
}

// From appends a FROM instruction.
func (f *File) From(image string) *File {
	return f.append("FROM " + image)
}

// Arg appends an ARG instruction.
func (f *File) Arg(name, value string) *File {
	if value == "" {
		return f.append("ARG " + name)
	}
	return f.append(fmt.Sprintf("ARG %s=%s", name, value))
}

// Env appends a single ENV instruction.
func (f *File) Env(key, value string) *File {
	return f.append(fmt.Sprintf("ENV %s=%s", key, quoteIfNeeded(value)))
}

// EnvMap appends one ENV instruction per key, in sorted key order.
func (f *File) EnvMap(env map[string]string) *File {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.Env(k, env[k])
	}
	return f
}

// Run appends a RUN instruction with a single command.
func (f *File) Run(command string) *File {
	return f.append("RUN " + command)
}

// RunAll appends a RUN instruction chaining commands with '&&',
// one command per continuation line.
func (f *File) RunAll(commands ...string) *File {
	if len(commands) == 0 {
		return f
	}
	if len(commands) == 1 {
		return f.Run(commands[0])
	}
	return f.append("RUN " + strings.Join(commands, " \\\n && "))
}

// RunWrapped appends a RUN instruction with one argument per
// continuation line. Used for long install commands.
func (f *File) RunWrapped(command string, args ...string) *File {
	if len(args) == 0 {
		return f.Run(command)
	}
	return f.append("RUN " + command + " \\\n      " + strings.Join(args, " \\\n      "))
}

// Copy appends a COPY instruction.
func (f *File) Copy(src, dst string) *File {
	return f.append(fmt.Sprintf("COPY %s %s", src, dst))
}

// CopyFrom appends a COPY --from instruction.
func (f *File) CopyFrom(image, src, dst string) *File {
	return f.append(fmt.Sprintf("COPY --from=%s %s %s", image, src, dst))
}

// Workdir appends a WORKDIR instruction.
func (f *File) Workdir(dir string) *File {
	return f.append("WORKDIR " + dir)
}

// Label appends a LABEL instruction.
func (f *File) Label(key, value string) *File {
	return f.append(fmt.Sprintf("LABEL %s=%q", key, value))
}

// Comment appends a standalone comment line.
func (f *File) Comment(text string) *File {
	return f.append("# " + text)
}

// Cmd appends an exec-form CMD instruction.
func (f *File) Cmd(args ...string) *File {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = fmt.Sprintf("%q", a)
	}
	return f.append("CMD [" + strings.Join(quoted, ", ") + "]")
}

// Render returns the Dockerfile contents. Blocks are separated by a
// single blank line; comments attach to the following instruction.
func (f *File) Render() string {
	var b strings.Builder
	b.WriteString(f.header)

	prevComment := false
	for i, block := range f.blocks {
		isComment := strings.HasPrefix(block, "# ")
		if i > 0 || f.header != "" {
			if !prevComment {
				b.WriteString("\n")
			}
		}
		b.WriteString(block + "\n")
		prevComment = isComment
	}
	return b.String()
}

func (f *File) append(block string) *File {
	f.blocks = append(f.blocks, block)
	return f
}

// quoteIfNeeded quotes ENV values containing whitespace.
func quoteIfNeeded(v string) string {
	if strings.ContainsAny(v, " \t") {
		return fmt.Sprintf("%q", v)
	}
	return v
}
