// Package faketool lets tests stand in for external release tools by
// re-executing the test binary. A test package calls RunIfRequested from
// TestMain; commands pointed at os.Executable() with Env applied then
// behave like a tool that logs its invocation and exits with a chosen code.
package faketool

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"
)

const (
	EnvMarker = "RELEASE_FAKE_TOOL"
	EnvExit   = "RELEASE_FAKE_EXIT"
	EnvLog    = "RELEASE_FAKE_LOG"
	EnvSleep  = "RELEASE_FAKE_SLEEP"
	EnvEcho   = "RELEASE_FAKE_ECHO"
)

// Invocation is one logged run of the fake tool.
type Invocation struct {
	Args []string `json:"args"`
	Dir  string   `json:"dir"`
	Echo string   `json:"echo,omitempty"`
	Path string   `json:"path"`
}

// RunIfRequested runs the fake tool and exits when the current process
// was started as one. Otherwise it returns immediately.
func RunIfRequested() {
	if os.Getenv(EnvMarker) != "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	if err := record(); err != nil {
		fmt.Fprintln(os.Stderr, "fake tool:", err)
		return 125
	}

	if s := os.Getenv(EnvSleep); s != "" {
		d, err := time.ParseDuration(s)
		if err == nil {
			time.Sleep(d)
		}
	}

	code, _ := strconv.Atoi(os.Getenv(EnvExit))
	if code != 0 {
		fmt.Fprintf(os.Stderr, "fake tool failing with %d\n", code)
	} else {
		fmt.Println("fake tool ok")
	}
	return code
}

func record() error {
	logPath := os.Getenv(EnvLog)
	if logPath == "" {
		return nil
	}

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	inv := Invocation{Args: os.Args[1:], Dir: dir, Path: os.Getenv("PATH")}
	if key := os.Getenv(EnvEcho); key != "" {
		inv.Echo = os.Getenv(key)
	}

	line, err := json.Marshal(inv)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return errors.Join(err, f.Close())
}

// Env returns the environment that turns an invocation of the test
// binary into a fake tool run.
func Env(logPath string, exitCode int) map[string]string {
	return map[string]string{
		EnvMarker: "1",
		EnvLog:    logPath,
		EnvExit:   strconv.Itoa(exitCode),
	}
}

// ReadLog returns the invocations recorded in logPath, oldest first.
// A missing log means nothing ran.
func ReadLog(logPath string) ([]Invocation, error) {
	f, err := os.Open(logPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []Invocation
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var inv Invocation
		if err := json.Unmarshal(sc.Bytes(), &inv); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, sc.Err()
}

// Executable returns the path of the running test binary.
func Executable() (string, error) {
	return os.Executable()
}

// Install copies the running test binary into dir as an executable called
// name, so it can be resolved through a search path.
func Install(dir, name string) (err error) {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	src, err := os.Open(exe)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o755)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	_, err = io.Copy(dst, src)
	return err
}
