package deps

// Contains bootstraped dependencies.
var Container Deps

// An ignitor takes a Container and injects bootstraped dependencies.
type Ignitor func(Deps) (Deps, error)

// Default ignitors, in the order they must run.
var Ignitors = []Ignitor{
	IgniteConfig,
	IgniteLogger,
	IgniteBucket,
	IgniteExceptions,
	IgniteCart,
}

// Bootstrap runs ignitors to fulfill the deps container. On failure the
// resources opened so far are released.
func Bootstrap(configFile string, ignitors ...Ignitor) (Deps, error) {
	if len(ignitors) == 0 {
		ignitors = Ignitors
	}

	container := Deps{ConfigFile: configFile}
	for _, fn := range ignitors {
		next, err := fn(container)
		if err != nil {
			container.Close()
			return Deps{}, err
		}
		container = next
	}

	Container = container
	return container, nil
}
