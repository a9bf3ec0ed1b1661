package sessionstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	opSet    = "set"
	opDelete = "delete"
)

// File is a JSONL-backed store: every mutation is appended as one line and
// the full log is replayed on open. That is what lets the markers survive a
// process restart within one session.
type File struct {
	mu     sync.Mutex
	values map[string][]byte
	fileMu sync.Mutex
	f      *os.File
}

func NewFile(path string) (*File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Printf("layer=store component=sessionstore method=NewFile path=%s err=%v", path, err)
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		log.Printf("layer=store component=sessionstore method=NewFile path=%s err=%v", path, err)
		return nil, err
	}

	s := &File{values: make(map[string][]byte), f: f}
	if err := s.replayFromFile(path, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		log.Printf("layer=store component=sessionstore method=NewFile path=%s err=%v", path, err)
		_ = f.Close()
		return nil, err
	}
	return s, nil
}

func (s *File) replayFromFile(path string, f *os.File) error {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		log.Printf("layer=store component=sessionstore method=replayFromFile path=%s err=%v", path, err)
		return err
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw struct {
			Op    string          `json:"op"`
			Key   string          `json:"key"`
			Value json.RawMessage `json:"value"`
			At    time.Time       `json:"at"`
		}
		if err := json.Unmarshal(line, &raw); err != nil {
			log.Printf("layer=store component=sessionstore method=replayFromFile path=%s err=%v", path, err)
			return errors.Join(ErrInternal, err)
		}
		switch raw.Op {
		case opSet:
			s.values[raw.Key] = []byte(raw.Value)
		case opDelete:
			delete(s.values, raw.Key)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("layer=store component=sessionstore method=replayFromFile path=%s err=%v", path, err)
		return err
	}
	return nil
}

func (s *File) Close() error {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	if err != nil {
		log.Printf("layer=store component=sessionstore method=Close err=%v", err)
	}
	s.f = nil
	return err
}

func (s *File) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *File) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.appendLine(opSet, key, value)
	return nil
}

func (s *File) SetNX(ctx context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	if _, ok := s.values[key]; ok {
		s.mu.Unlock()
		return false, nil
	}
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	s.appendLine(opSet, key, value)
	return true, nil
}

func (s *File) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	s.appendLine(opDelete, key, nil)
	return nil
}

func (s *File) appendLine(op, key string, value []byte) {
	s.fileMu.Lock()
	defer s.fileMu.Unlock()
	if s.f == nil {
		return
	}
	line := map[string]any{
		"op":  op,
		"key": key,
		"at":  time.Now().UTC(),
	}
	if value != nil {
		line["value"] = json.RawMessage(value)
	}
	b, err := json.Marshal(line)
	if err != nil {
		log.Printf("layer=store component=sessionstore method=appendLine op=%s key=%s err=%v", op, key, err)
		return
	}
	if _, err := s.f.Write(append(b, '\n')); err != nil {
		log.Printf("layer=store component=sessionstore method=appendLine op=%s key=%s err=%v", op, key, err)
	}
}
