// Package loader handles ROM file loading.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/MrPolymorph/Chiper/chip8"
)

var (
	// ErrROMNotFound is returned when the ROM path does not exist.
	ErrROMNotFound = errors.New("ROM not found")

	// ErrEmptyROM is returned for a ROM file without any content.
	ErrEmptyROM = errors.New("ROM is empty")
)

// Load reads the ROM file at path and checks that it fits into the program
// area of the machine. The content is not interpreted in any way.
func Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrROMNotFound, path)
		}
		return nil, fmt.Errorf("checking file %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("loading %s: is a directory", path)
	}
	if info.Size() > chip8.MaxROMSize {
		return nil, fmt.Errorf("loading %s: %w: %d bytes, at most %d fit",
			path, chip8.ErrROMTooLarge, info.Size(), chip8.MaxROMSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	switch {
	case len(data) == 0:
		return nil, fmt.Errorf("loading %s: %w", path, ErrEmptyROM)
	case len(data) > chip8.MaxROMSize: // file grew since stat
		return nil, fmt.Errorf("loading %s: %w: %d bytes, at most %d fit",
			path, chip8.ErrROMTooLarge, len(data), chip8.MaxROMSize)
	}

	return data, nil
}
