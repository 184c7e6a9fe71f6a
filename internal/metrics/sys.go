package metrics

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/dustin/go-humanize"
)

// SysHealth represents real-time process metrics.
type SysHealth struct {
	Alloc      string
	Sys        string
	NumGC      uint32
	Goroutines int
	DataSize   string
}

// GetSysHealth collects real-time health data. dataPath is the directory or
// file holding persisted state.
func GetSysHealth(dataPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		Alloc:      humanize.Bytes(m.Alloc),
		Sys:        humanize.Bytes(m.Sys),
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
		DataSize:   humanize.Bytes(pathSize(dataPath)),
	}
}

func pathSize(path string) uint64 {
	var size uint64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += uint64(info.Size())
		}
		return nil
	})
	return size
}
