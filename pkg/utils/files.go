package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gochip8/pkg/asm"
	"gochip8/pkg/chip8"
)

// SourceExt marks assembly sources; any other file is a raw program image.
const SourceExt = ".c8s"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadProgram returns the image to load at origin. Assembly sources are
// assembled on the fly, everything else is read verbatim.
func ReadProgram(path string, origin uint16) ([]byte, error) {
	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, err
	}
	return DecodeProgram(filepath.Base(fullPath), data, origin)
}

// DecodeProgram turns the contents of a file called name into an image.
func DecodeProgram(name string, data []byte, origin uint16) ([]byte, error) {
	if strings.EqualFold(filepath.Ext(name), SourceExt) {
		program, _, err := asm.NewAssembler(origin).Assemble(string(data))
		if err != nil {
			return nil, fmt.Errorf("assembling %s: %w", name, err)
		}
		data = program
	}

	if int(origin)+len(data) > chip8.MemorySize {
		return nil, fmt.Errorf("%s: %w", name, chip8.ErrProgramTooLarge)
	}
	return data, nil
}
