package pa

// Parts selects the pieces of a path for Build.
//
// Path wins over everything. Base wins over Name, Ext and Fext. Fext (with
// its dot) wins over Ext. An empty Dir yields no directory.
type Parts struct {
	Path string
	Dir  string
	Base string
	Name string
	Ext  string
	Fext string
}

// Build assembles a path string from parts.
//
//	Build(Parts{Dir: "foo", Name: "bar", Ext: "avi"})  // "foo/bar.avi"
//	Build(Parts{Ext: "avi"})                          // ".avi"
func Build(parts Parts) string {
	if parts.Path != "" {
		return parts.Path
	}
	if parts.Base != "" {
		return Join(parts.Dir, parts.Base)
	}

	fext := parts.Fext
	if fext == "" && parts.Ext != "" {
		fext = "." + parts.Ext
	}
	return Join(parts.Dir, parts.Name+fext)
}
