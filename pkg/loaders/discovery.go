package loaders

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultGroup is the group of a scene file that does not name one
const DefaultGroup = "Scenes"

// SceneInfo represents a discovered scene file with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // File name without extension
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	FilePath    string `json:"filePath"`    // Path to the YAML file
	Volumes     int    `json:"volumes"`     // Number of volume entries
	Queries     int    `json:"queries"`     // Number of query entries
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ListScenes scans dir for .yaml and .yml scene files. A missing directory is
// an empty list; files that fail to parse are skipped.
func ListScenes(dir string) ([]SceneInfo, error) {
	if _, err := os.Stat(dir); err != nil {
		return []SceneInfo{}, nil
	}

	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
		}
		files = append(files, matches...)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})

	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group of a scene file
// without building its volumes
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    DefaultGroup,
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, fmt.Errorf("failed to read scene: %w", err)
	}

	var config SceneConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return info, fmt.Errorf("failed to parse scene: %w", err)
	}

	if config.Name != "" {
		info.Name = config.Name
	}
	if config.Group != "" {
		info.Group = config.Group
	}
	info.Description = config.Description
	info.Volumes = len(config.Volumes)
	info.Queries = len(config.Queries)

	return info, nil
}

// GroupScenes groups scenes by their Group field, groups in alphabetical order
func GroupScenes(scenes []SceneInfo) []SceneGroup {
	groupMap := make(map[string][]SceneInfo)
	var groupNames []string
	for _, scene := range scenes {
		if _, exists := groupMap[scene.Group]; !exists {
			groupNames = append(groupNames, scene.Group)
		}
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}
	sort.Strings(groupNames)

	groups := make([]SceneGroup, 0, len(groupNames))
	for _, name := range groupNames {
		groups = append(groups, SceneGroup{Name: name, Scenes: groupMap[name]})
	}
	return groups
}

// titleCase converts a filename-style string to title case
// e.g., "falling-ball" -> "Falling Ball"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
