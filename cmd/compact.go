package cmd

import (
	"context"
	"fmt"
	"os"
)

// Compact compacts the history database to reclaim unused space
func Compact(_ context.Context) {
	session := NewSession(true)
	defer session.Close()
	db := session.History()

	// Get file size before
	info, err := os.Stat(db.Path())
	if err != nil {
		Fail(err)
	}
	sizeBefore := info.Size()

	if err := db.Compact(); err != nil {
		Fail(err)
	}

	// Get file size after
	info, err = os.Stat(db.Path())
	if err != nil {
		Fail(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
