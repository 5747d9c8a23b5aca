package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/illarion/clipseal/internal/clipboard"
	"github.com/illarion/clipseal/internal/storage"
)

// HistoryList shows sealed history records. No passphrase is needed.
func HistoryList(_ context.Context) {
	session := NewSession(true)
	defer session.Close()
	db := session.History()

	count, err := db.Count()
	if err != nil {
		Fail(err)
	}
	created, err := db.GetCreated()
	if err != nil {
		Fail(err)
	}
	deviceID, err := db.GetOrCreateDeviceID()
	if err != nil {
		Fail(err)
	}

	fmt.Printf("History: %s\n", db.Path())
	fmt.Printf("Created: %s\n", created.Format("2006-01-02 15:04:05"))
	fmt.Printf("Device:  %s (%s)\n", session.Settings.DeviceName, deviceID)
	fmt.Printf("Records: %d (limit %d)\n", count, session.Settings.HistoryLimit)

	if count == 0 {
		return
	}

	records, err := db.List()
	if err != nil {
		Fail(err)
	}
	fmt.Println()
	for _, rec := range records {
		fmt.Printf("  %4d  %s  %-16s  %s\n",
			rec.Seq,
			rec.Time().Format("2006-01-02 15:04:05"),
			rec.Origin,
			formatSize(int64(rec.Payload.CiphertextSize())))
	}
}

// HistoryShow prints the content of one record
func HistoryShow(ctx context.Context, seqArg string) {
	session := NewSession(true)
	defer session.Close()

	rec := getRecord(session, seqArg)
	session.Unlock(ctx)

	content, err := session.App.OpenRecord(ctx, rec)
	if err != nil {
		HandleError(err)
	}
	fmt.Println(content)
}

// HistoryDiff shows a unified diff between two records
func HistoryDiff(ctx context.Context, fromArg, toArg string) {
	session := NewSession(true)
	defer session.Close()

	from := getRecord(session, fromArg)
	to := getRecord(session, toArg)
	session.Unlock(ctx)

	fromText, err := session.App.OpenRecord(ctx, from)
	if err != nil {
		HandleError(err)
	}
	toText, err := session.App.OpenRecord(ctx, to)
	if err != nil {
		HandleError(err)
	}

	diff := clipboard.UnifiedDiff("#"+fromArg, "#"+toArg, fromText, toText)
	if diff == "" {
		fmt.Println("No differences")
		return
	}
	fmt.Print(diff)
}

// HistoryRemove deletes one record
func HistoryRemove(_ context.Context, seqArg string) {
	session := NewSession(true)
	defer session.Close()

	rec := getRecord(session, seqArg)
	if err := session.History().Delete(rec.Seq); err != nil {
		Fail(err)
	}
	success(fmt.Sprintf("Removed record #%d", rec.Seq))
}

// HistoryClear removes all records
func HistoryClear(_ context.Context) {
	session := NewSession(true)
	defer session.Close()

	if err := session.History().Clear(); err != nil {
		Fail(err)
	}
	success("History cleared")
	hint("Run 'clipseal compact' to reclaim disk space")
}

func getRecord(session *Session, arg string) *storage.Record {
	seq, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		Fail(fmt.Errorf("invalid record number %q", arg))
	}
	rec, err := session.History().Get(seq)
	if errors.Is(err, storage.ErrNotFound) {
		Fail(fmt.Errorf("no record #%d", seq))
	}
	if err != nil {
		Fail(err)
	}
	return rec
}
