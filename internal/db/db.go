// Copyright 2026 Wasmgraph Users
// SPDX-License-Identifier: Apache-2.0

// Package db persists analyzed call graphs to SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/dotandev/wasmgraph/internal/callgraph"
)

// Store handles database operations.
type Store struct {
	db *sql.DB
}

// Open opens the graph database at path, creating the file and its
// directory as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS modules (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file TEXT NOT NULL,
		functions INTEGER NOT NULL,
		imports INTEGER NOT NULL,
		edges INTEGER NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS functions (
		module_id INTEGER NOT NULL,
		idx INTEGER NOT NULL,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		exported INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS edges (
		module_id INTEGER NOT NULL,
		caller INTEGER NOT NULL,
		callee INTEGER NOT NULL,
		kind TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_functions_module ON functions(module_id);
	CREATE INDEX IF NOT EXISTS idx_edges_module ON edges(module_id);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to init schema: %w", err)
	}
	return nil
}

// SaveGraph inserts one analyzed module. Exporting the same file again
// appends a new module row rather than replacing the old one.
func (s *Store) SaveGraph(file string, g *callgraph.Graph) (int64, error) {
	edgeCount := 0
	for _, ee := range g.Edges {
		edgeCount += len(ee)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO modules (file, functions, imports, edges) VALUES (?, ?, ?, ?)`,
		file, len(g.Module.Functions), int(g.Module.NumImports), edgeCount,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert module: %w", err)
	}
	moduleID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read module id: %w", err)
	}

	for i := range g.Module.Functions {
		fn := &g.Module.Functions[i]
		kind := "defined"
		if fn.Imported {
			kind = "import"
		}
		exported := 0
		if fn.ExportName != "" {
			exported = 1
		}
		if _, err := tx.Exec(
			`INSERT INTO functions (module_id, idx, name, kind, exported) VALUES (?, ?, ?, ?, ?)`,
			moduleID, fn.Index, fn.Resolved, kind, exported,
		); err != nil {
			return 0, fmt.Errorf("failed to insert function %d: %w", fn.Index, err)
		}
	}

	for from, ee := range g.Edges {
		for _, e := range ee {
			kind := "direct"
			if e.Kind == callgraph.EdgeImplicit {
				kind = "implicit"
			}
			if _, err := tx.Exec(
				`INSERT INTO edges (module_id, caller, callee, kind) VALUES (?, ?, ?, ?)`,
				moduleID, from, e.To, kind,
			); err != nil {
				return 0, fmt.Errorf("failed to insert edge %d->%d: %w", from, e.To, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return moduleID, nil
}
