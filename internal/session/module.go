package session

import "go.uber.org/fx"

// Module provides the file-backed session store as itself, a Store and a Provider
var Module = fx.Module("session",
	fx.Provide(
		NewFileStore,
		func(s *FileStore) Store { return s },
		func(s *FileStore) Provider { return s },
	),
)
