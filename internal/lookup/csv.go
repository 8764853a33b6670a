package lookup

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/evyataryagoni/geopage/internal/models"
	"github.com/fsnotify/fsnotify"
)

// CSVLookup answers from a CSV file loaded into memory.
//
// CSV Format: ip,country (header row required)
// The ip column holds a single address or a CIDR prefix:
//
//	ip,country
//	5.160.0.0/16,IR
//	8.8.8.8,US
//
// Exact addresses win over prefixes; among prefixes the longest match wins.
type CSVLookup struct {
	path string

	mu       sync.RWMutex
	exact    map[netip.Addr]string
	prefixes []prefixEntry

	watcher *fsnotify.Watcher
}

type prefixEntry struct {
	prefix  netip.Prefix
	country string
}

// NewCSVLookup reads the dataset at filePath
func NewCSVLookup(filePath string) (*CSVLookup, error) {
	l := &CSVLookup{path: filePath}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *CSVLookup) Name() string { return "csv" }

// Reload re-reads the dataset and swaps it in atomically.
// On error the previous data stays in place.
func (l *CSVLookup) Reload() error {
	records, err := readCSV(l.path)
	if err != nil {
		return err
	}

	exact := make(map[netip.Addr]string)
	var prefixes []prefixEntry
	for _, record := range records {
		if strings.Contains(record.IP, "/") {
			prefix, err := netip.ParsePrefix(record.IP)
			if err != nil {
				continue
			}
			prefixes = append(prefixes, prefixEntry{prefix: prefix.Masked(), country: record.Country})
			continue
		}
		addr, err := netip.ParseAddr(record.IP)
		if err != nil {
			continue
		}
		exact[addr.Unmap()] = record.Country
	}

	l.mu.Lock()
	l.exact = exact
	l.prefixes = prefixes
	l.mu.Unlock()

	return nil
}

// LookupCountry implements Lookup
func (l *CSVLookup) LookupCountry(_ context.Context, ip string) (string, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "", fmt.Errorf("parsing IP %q: %w", ip, err)
	}
	addr = addr.Unmap()

	l.mu.RLock()
	defer l.mu.RUnlock()

	if country, exists := l.exact[addr]; exists {
		return country, nil
	}

	best := -1
	country := ""
	for _, entry := range l.prefixes {
		if entry.prefix.Bits() > best && entry.prefix.Contains(addr) {
			best = entry.prefix.Bits()
			country = entry.country
		}
	}
	if best < 0 {
		return "", ErrNotFound
	}
	return country, nil
}

// Len returns the number of exact and prefix entries loaded
func (l *CSVLookup) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.exact) + len(l.prefixes)
}

// Records returns every loaded entry, prefixes in their canonical form
func (l *CSVLookup) Records() []models.IPCountry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]models.IPCountry, 0, len(l.exact)+len(l.prefixes))
	for addr, country := range l.exact {
		records = append(records, models.IPCountry{IP: addr.String(), Country: country})
	}
	for _, entry := range l.prefixes {
		records = append(records, models.IPCountry{IP: entry.prefix.String(), Country: entry.country})
	}
	return records
}

// Watch reloads the dataset whenever the file is written, created or
// renamed into place. The directory is watched rather than the file so
// editors that replace the file are picked up too. onReload, if set, is
// called after every reload attempt with its result. Watching stops when
// ctx is done or Close is called.
func (l *CSVLookup) Watch(ctx context.Context, onReload func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	l.mu.Lock()
	l.watcher = watcher
	l.mu.Unlock()

	target := filepath.Clean(l.path)
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				err := l.Reload()
				if onReload != nil {
					onReload(err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if onReload != nil {
					onReload(fmt.Errorf("file watcher: %w", err))
				}
			}
		}
	}()

	return nil
}

// Close stops the watcher if one is running
func (l *CSVLookup) Close() error {
	l.mu.Lock()
	watcher := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

// readCSV parses a two column ip,country file, skipping the header row and
// any malformed rows
func readCSV(filePath string) ([]models.IPCountry, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	records := make([]models.IPCountry, 0, len(rows)-1)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) != 2 || row[0] == "" || row[1] == "" {
			continue
		}
		records = append(records, models.IPCountry{
			IP:      strings.TrimSpace(row[0]),
			Country: strings.TrimSpace(row[1]),
		})
	}

	return records, nil
}
