package zenv

// Engine is the narrow surface of the underlying build-graph engine this
// package pushes configuration into. Idempotent append semantics are the
// engine's concern; Env only guarantees ordering.
type Engine interface {
	AppendCompileFlags(flags ...string)
	AppendLinkFlags(flags ...string)
	AppendLibraries(libs ...string)
	AppendLibPaths(paths ...string)
	AppendIncludePaths(paths ...string)
	AppendDefines(defs ...string)
}

// Apply pushes the derived flags and all accumulated state into the engine.
func (e *Env) Apply(eng Engine) {
	fs := e.Flags()
	eng.AppendCompileFlags(fs.Compile...)
	eng.AppendLinkFlags(fs.Link...)
	eng.AppendLibraries(e.libs...)
	eng.AppendLibPaths(e.libPaths...)
	eng.AppendIncludePaths(e.includePaths...)
	eng.AppendDefines(e.defines...)
}

// Recorder is an in-memory Engine, handy for tests and for printing what a
// configuration would feed a real build engine.
type Recorder struct {
	CompileFlags []string
	LinkFlags    []string
	Libraries    []string
	LibPaths     []string
	IncludePaths []string
	Defines      []string
}

func (r *Recorder) AppendCompileFlags(flags ...string) {
	r.CompileFlags = append(r.CompileFlags, flags...)
}
func (r *Recorder) AppendLinkFlags(flags ...string) { r.LinkFlags = append(r.LinkFlags, flags...) }
func (r *Recorder) AppendLibraries(libs ...string)  { r.Libraries = append(r.Libraries, libs...) }
func (r *Recorder) AppendLibPaths(paths ...string)  { r.LibPaths = append(r.LibPaths, paths...) }
func (r *Recorder) AppendIncludePaths(paths ...string) {
	r.IncludePaths = append(r.IncludePaths, paths...)
}
func (r *Recorder) AppendDefines(defs ...string) { r.Defines = append(r.Defines, defs...) }
