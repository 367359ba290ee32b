// Command otgen runs the terrain generator outside of a host. It pregenerates areas of a world and exports
// base terrain heightmaps.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/otgmc/otg/server"
	"github.com/otgmc/otg/server/world"
	"github.com/pelletier/go-toml"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "pregen":
		err = pregenCmd(ctx, os.Args[2:])
	case "mapterrain":
		err = mapTerrainCmd(ctx, os.Args[2:])
	case "presets":
		err = presetsCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: otgen <pregen|mapterrain|presets> [flags]")
}

type commonFlags struct {
	config *string
	world  *string
	x, z   *int
	radius *int
	debug  *bool
}

func addCommon(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", "otg.toml", "engine config file, created with defaults if missing"),
		world:  fs.String("world", "overworld", "name of the world"),
		x:      fs.Int("x", 0, "x of the centre chunk"),
		z:      fs.Int("z", 0, "z of the centre chunk"),
		radius: fs.Int("radius", 8, "radius in chunks"),
		debug:  fs.Bool("debug", false, "log at debug level"),
	}
}

func (c commonFlags) engine() (*server.Engine, error) {
	level := slog.LevelInfo
	if *c.debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	uc, err := readConfig(*c.config)
	if err != nil {
		return nil, err
	}
	conf, err := uc.Config(log)
	if err != nil {
		return nil, err
	}
	return conf.New()
}

func (c commonFlags) centre() world.ChunkPos {
	return world.ChunkPos{int32(*c.x), int32(*c.z)}
}

func pregenCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("pregen", flag.ExitOnError)
	c := addCommon(fs)
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	defer e.Close()

	start := time.Now()
	r, err := e.Pregenerate(ctx, *c.world, c.centre(), *c.radius)
	if err != nil {
		return fmt.Errorf("pregenerate: %w", err)
	}
	g, _ := e.World(*c.world)
	m := g.Shadow().Metrics()
	side := 2*(*c.radius) + 2
	fmt.Printf("generated %v chunks in %v (shadow hits %v, misses %v, timeouts %v)\n",
		side*side, time.Since(start).Round(time.Millisecond), m.Hits, m.Misses, m.Timeouts)
	if ch, ok := r.Chunk(c.centre()); ok {
		fmt.Printf("centre chunk %v checksum %016x\n", c.centre(), ch.Terrain().Checksum())
	}
	return nil
}

func mapTerrainCmd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mapterrain", flag.ExitOnError)
	c := addCommon(fs)
	out := fs.String("out", "heightmap.otgh.zst", "output file")
	_ = fs.Parse(args)

	e, err := c.engine()
	if err != nil {
		return err
	}
	defer e.Close()

	f, err := os.Create(*out)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := e.ExportHeightmap(ctx, f, *c.world, c.centre(), *c.radius); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Printf("wrote %v\n", *out)
	return nil
}

func presetsCmd(args []string) error {
	fs := flag.NewFlagSet("presets", flag.ExitOnError)
	config := fs.String("config", "otg.toml", "engine config file, created with defaults if missing")
	_ = fs.Parse(args)

	uc, err := readConfig(*config)
	if err != nil {
		return err
	}
	conf, err := uc.Config(slog.Default())
	if err != nil {
		return err
	}
	for _, name := range conf.Presets.Names() {
		p, err := conf.Presets.Get(name)
		if err != nil {
			return err
		}
		fmt.Printf("%v\t%016x\t%v\n", p.Name, p.Fingerprint(), p.Description)
	}
	return nil
}

// readConfig reads the engine config at path. If the file does not exist, it is created with the default
// values.
func readConfig(path string) (server.UserConfig, error) {
	c := server.DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := toml.Marshal(c)
		if err != nil {
			return c, fmt.Errorf("encode default config: %v", err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return c, fmt.Errorf("create default config: %v", err)
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("read config: %v", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode config: %v", err)
	}
	return c, nil
}
