package main

import "github.com/qingque-bot/qingque/internal/paths"

// ///////////////////////////////////////////////
// Path Aliases
// ///////////////////////////////////////////////

// DataPaths aliases [paths.DataDir] so command code can reference path
// helpers without qualifying the internal package name.
type DataPaths = paths.DataDir
