package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/ednfs/ednfs-cli/internal/cli"
	"github.com/ednfs/ednfs-cli/internal/edncodec"
	"github.com/ednfs/ednfs-cli/internal/errors"
	"github.com/ednfs/ednfs-cli/internal/fs"
	"github.com/ednfs/ednfs-cli/internal/tree"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	tsize "github.com/kopoli/go-terminal-size"
	"github.com/manifoldco/promptui"
	"golang.org/x/term"
	"olympos.io/encoding/edn"
)

var errQuit = errors.New("quit")

// command is one entry in the closed dispatch table: a name, an argument
// range, and a handler. Anything the operator types that doesn't fit is a
// parse failure reported here at the shell boundary; handlers never see it.
type command struct {
	name    string
	alias   string
	minArgs int
	maxArgs int
	usage   string
	run     func(svc *cli.Service, args []string) (string, error)
}

var commands = []command{
	{
		name: "ls", minArgs: 0, maxArgs: 1, usage: "ls [path]",
		run: func(svc *cli.Service, args []string) (string, error) {
			if len(args) == 0 {
				return svc.Ls()
			}
			return svc.Ls(splitPath(args[0])...)
		},
	},
	{
		name: "pwd", minArgs: 0, maxArgs: 0, usage: "pwd",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Pwd(), nil
		},
	},
	{
		name: "cd", minArgs: 1, maxArgs: 1, usage: "cd <path>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return "", svc.Cd(splitPath(args[0])...)
		},
	},
	{
		name: "cat", minArgs: 1, maxArgs: 1, usage: "cat <key>",
		run: func(svc *cli.Service, args []string) (string, error) {
			value, ok := svc.Cat(args[0])
			if !ok {
				return "", nil
			}
			return formatValue(value), nil
		},
	},
	{
		name: "put", minArgs: 2, maxArgs: -1, usage: "put <key> <value>",
		run: func(svc *cli.Service, args []string) (string, error) {
			value, err := parseValue(strings.Join(args[1:], " "))
			if err != nil {
				return "", err
			}
			return svc.Put(args[0], value), nil
		},
	},
	{
		name: "mkdir", minArgs: 1, maxArgs: 1, usage: "mkdir <key>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Mkdir(args[0]), nil
		},
	},
	{
		name: "cp", minArgs: 2, maxArgs: 2, usage: "cp <src> <dest>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Cp(splitPath(args[0]), splitPath(args[1]))
		},
	},
	{
		name: "mv", alias: "rename", minArgs: 2, maxArgs: 2, usage: "mv <src> <dest>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Rename(splitPath(args[0]), splitPath(args[1]))
		},
	},
	{
		name: "rm", minArgs: 1, maxArgs: 1, usage: "rm <path>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Rm(splitPath(args[0])...)
		},
	},
	{
		name: "rmdir", minArgs: 1, maxArgs: 1, usage: "rmdir <path>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Rmdir(splitPath(args[0])...)
		},
	},
	{
		name: "mount", minArgs: 0, maxArgs: -1, usage: "mount [literal]",
		run: func(svc *cli.Service, args []string) (string, error) {
			if len(args) == 0 {
				svc.Mount(nil)
				return "mounted an empty tree", nil
			}
			root, err := edncodec.Decode([]byte(strings.Join(args, " ")))
			if err != nil {
				return "", err
			}
			svc.Mount(root)
			return "mounted", nil
		},
	},
	{
		name: "load", minArgs: 1, maxArgs: 1, usage: "load <filename>",
		run: func(svc *cli.Service, args []string) (string, error) {
			if err := loadFile(svc, args[0]); err != nil {
				return "", err
			}
			return fmt.Sprintf("loaded %q", args[0]), nil
		},
	},
	{
		name: "save", minArgs: 0, maxArgs: 0, usage: "save",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.Save()
		},
	},
	{
		name: "save-as", minArgs: 1, maxArgs: 1, usage: "save-as <filename>",
		run: func(svc *cli.Service, args []string) (string, error) {
			return svc.SaveAs(args[0])
		},
	},
	{
		name: "quit", alias: "exit", minArgs: 0, maxArgs: 0, usage: "quit",
		run: func(svc *cli.Service, args []string) (string, error) {
			return "", errQuit
		},
	},
}

// help walks the table, so it is registered here instead of in the table's
// own initializer.
func init() {
	commands = append(commands, command{
		name: "help", minArgs: 0, maxArgs: 0, usage: "help",
		run: func(svc *cli.Service, args []string) (string, error) {
			lines := make([]string, 0, len(commands))
			for _, c := range commands {
				lines = append(lines, "  "+c.usage)
			}
			return strings.Join(lines, "\n"), nil
		},
	})
}

func runShell(svc *cli.Service, filename string) error {
	if filename != "" {
		if err := loadFile(svc, filename); err != nil {
			return err
		}
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return runScript(svc, os.Stdin)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(svc),
		HistoryFile:     filepath.Join(os.TempDir(), ".ednfs_history"),
		AutoComplete:    &shellCompleter{svc: svc, fsys: fs.Local{}},
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			if confirmExit(svc) {
				return nil
			}
			continue
		}
		if err != nil {
			return err
		}

		output, err := execLine(svc, line)
		if errors.Is(err, errQuit) {
			if confirmExit(svc) {
				return nil
			}
			continue
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		} else if output != "" {
			fmt.Println(clip(output))
		}

		rl.SetPrompt(prompt(svc))
	}
}

// runScript feeds each line of input through the same command table,
// without line editing. Errors are reported and the session continues.
func runScript(svc *cli.Service, input io.Reader) error {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), ";") {
			continue
		}

		output, err := execLine(svc, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			continue
		}
		if output != "" {
			fmt.Println(output)
		}
	}
	return scanner.Err()
}

func execLine(svc *cli.Service, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}

	name, args := fields[0], fields[1:]
	for _, c := range commands {
		if c.name != name && c.alias != name {
			continue
		}
		if len(args) < c.minArgs || (c.maxArgs >= 0 && len(args) > c.maxArgs) {
			return "", errors.Errorf("usage: %s", c.usage)
		}
		return c.run(svc, args)
	}

	return "", errors.Errorf("unknown command %q; try help", name)
}

// loadFile wraps Service.Load with a progress indicator when attached to a
// terminal.
func loadFile(svc *cli.Service, filename string) error {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		indicator := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		indicator.Suffix = fmt.Sprintf(" loading %s", filename)
		indicator.Start()
		defer indicator.Stop()
	}

	return svc.Load(filename)
}

// confirmExit offers to save a dirty tree before the shell exits. Declining
// discards the changes.
func confirmExit(svc *cli.Service) bool {
	if !svc.Dirty() {
		return true
	}

	confirm := promptui.Prompt{
		Label:     "You have unsaved changes. Save before exiting",
		IsConfirm: true,
	}
	if _, err := confirm.Run(); err != nil {
		return true
	}

	message, err := svc.Save()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		return false
	}

	fmt.Println(message)
	return !svc.Dirty()
}

func prompt(svc *cli.Service) string {
	return svc.Pwd() + "> "
}

func splitPath(arg string) []string {
	parts := strings.Split(arg, "/")
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		segments = append(segments, part)
	}
	return segments
}

// parseValue reads one EDN literal. A value that doesn't parse is a
// malformed-input failure, reported by the shell loop.
func parseValue(text string) (any, error) {
	var value any
	if err := edn.Unmarshal([]byte(text), &value); err != nil {
		return nil, errors.Wrapf(err, "unable to parse %q", text)
	}
	return value, nil
}

func formatValue(value any) string {
	if dir, ok := value.(*tree.Dir); ok {
		data, err := edncodec.Encode(dir)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return strings.TrimRight(string(data), "\n")
	}

	data, err := edn.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

// clip trims each output line to the terminal width so a huge leaf value
// doesn't wrap the whole screen.
func clip(output string) string {
	size, err := tsize.GetSize()
	if err != nil || size.Width <= 3 {
		return output
	}

	lines := strings.Split(output, "\n")
	for i, line := range lines {
		if len(line) > size.Width {
			lines[i] = line[:size.Width-3] + "..."
		}
	}
	return strings.Join(lines, "\n")
}

// shellCompleter implements readline's completion against the session:
// the first word completes to command names, arguments to load and save-as
// to filenames on the host, and every other word to the child names of the
// current directory.
type shellCompleter struct {
	svc  *cli.Service
	fsys fs.FileSystem
}

func (c *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	head := string(line[:pos])

	var words []string
	lastSpace := strings.LastIndex(head, " ")
	prefix := head[lastSpace+1:]

	if lastSpace < 0 {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd.name, prefix) {
				words = append(words, cmd.name)
			}
			if cmd.alias != "" && strings.HasPrefix(cmd.alias, prefix) {
				words = append(words, cmd.alias)
			}
		}
	} else {
		switch firstWord(head) {
		case "load", "save-as":
			words = c.fileCandidates(prefix)
		default:
			words = c.svc.Complete(prefix)
		}
	}

	completions := make([][]rune, 0, len(words))
	for _, word := range words {
		completions = append(completions, []rune(word[len(prefix):]))
	}
	return completions, len([]rune(prefix))
}

// fileCandidates completes prefix against the host filesystem, relative to
// the working directory. Directories complete with a trailing slash.
func (c *shellCompleter) fileCandidates(prefix string) []string {
	dir, base := path.Split(prefix)

	readFrom := dir
	if readFrom == "" {
		wd, err := c.fsys.Getwd()
		if err != nil {
			return nil
		}
		readFrom = wd
	}

	entries, err := c.fsys.ReadDir(readFrom)
	if err != nil {
		return nil
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, base) {
			continue
		}
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, dir+name)
	}
	return names
}

func firstWord(head string) string {
	fields := strings.Fields(head)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
