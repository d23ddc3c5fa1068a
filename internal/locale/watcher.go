package locale

import (
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the locale file whenever it changes on disk and hands the
// fresh table to onReload. Returns a stop function. Errors during reload
// keep the previous table in place.
func Watch(path string, onReload func(*Table)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files on save
	// and the watch on the old inode would be lost.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					table, err := LoadFile(path)
					if err != nil {
						log.Printf("⚠️ [LOCALE] Reload failed, keeping previous table: %v", err)
						continue
					}
					log.Printf("🔄 [LOCALE] Reloaded locale table %q from %s", table.Name, path)
					onReload(table)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ [LOCALE] Watcher error: %v", err)
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
