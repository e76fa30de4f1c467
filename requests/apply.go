package requests

import (
	"github.com/treefs-io/treefs"
	"github.com/treefs-io/treefs/filesystem"
	"github.com/treefs-io/treefs/internal/util"
)

// Apply populates tree with the given definitions. Directories are applied
// before files so explicit directory defs take effect regardless of order in
// the source file. A failing def is logged and skipped; the number of nodes
// actually created is returned.
func Apply(tree *filesystem.Tree, defs []treefs.NodeDef) int {
	logger := util.GetLogger("requests.Apply")

	var dirs, files []treefs.NodeDef
	for _, def := range defs {
		switch def.Type {
		case treefs.DirNodeType:
			dirs = append(dirs, def)
		case treefs.FileNodeType:
			files = append(files, def)
		default:
			logger.Warn().Str("type", string(def.Type)).Str("path", def.Path).Msg("Unknown node type")
		}
	}

	added := 0
	for _, def := range dirs {
		if _, err := tree.MkdirAll(def.Path); err != nil {
			logger.Error().Err(err).Str("path", def.Path).Msg("Failed to apply directory def")
			continue
		}
		added++
	}
	for _, def := range files {
		if _, err := tree.WriteFile(def.Path, []byte(def.Data)); err != nil {
			logger.Error().Err(err).Str("path", def.Path).Msg("Failed to apply file def")
			continue
		}
		added++
	}

	logger.Info().Int("directories", len(dirs)).Int("files", len(files)).Int("added", added).
		Msg("Applied node definitions")
	return added
}
