// Package config loads the YAML configuration shared by the mybus
// commands, and builds the manager it describes.
package config
