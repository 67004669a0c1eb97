// zkcli runs a single operation against a ZooKeeper ensemble through the
// zkconn session layer. Mostly useful for poking at chrooted namespaces:
//
//	zkcli --servers zk1:2181,zk2:2181/appA create /node1 hello
//	zkcli --servers zk1:2181,zk2:2181/appA get /node1
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"

	"github.com/mikekulinski/zkconn/pkg/handle"
	"github.com/mikekulinski/zkconn/pkg/session"
	"github.com/mikekulinski/zkconn/pkg/zxid"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a TOML config file")
		servers    = flag.String("servers", "", "host string, chroot suffix allowed (overrides config)")
		timeout    = flag.Duration("timeout", 0, "session timeout (overrides config)")
		ephemeral  = flag.Bool("ephemeral", false, "create an ephemeral node")
		sequential = flag.Bool("sequential", false, "create a sequential node")
		version    = flag.Int32("version", -1, "expected version for set/delete")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *servers != "" {
		cfg.Servers = *servers
	}
	if *timeout > 0 {
		cfg.SessionTimeout = *timeout
	}

	log := initLogger(cfg.LogLevel)

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: zkcli [flags] <create|get|set|delete|exists|children|stat|sync> [path] [data]")
		os.Exit(2)
	}

	conn, err := session.New(cfg.Servers,
		session.WithSessionTimeout(cfg.SessionTimeout),
		session.WithLogger(log),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting")
	}
	defer conn.Close()

	if err := run(conn, args, *ephemeral, *sequential, *version); err != nil {
		log.Fatal().Err(err).Str("op", args[0]).Msg("operation failed")
	}
}

func run(conn *session.Connection, args []string, ephemeral, sequential bool, version int32) error {
	op := args[0]
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	data := []byte(nil)
	if len(args) > 2 {
		data = []byte(args[2])
	}

	switch op {
	case "create":
		var flags int32
		if ephemeral {
			flags |= handle.FlagEphemeral
		}
		if sequential {
			flags |= handle.FlagSequential
		}
		created, err := conn.Create(path, data, flags, handle.WorldACL(handle.PermAll))
		if err != nil {
			return err
		}
		fmt.Println(created)
	case "get":
		data, st, err := conn.Get(path)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		printStat(st)
	case "set":
		st, err := conn.Set(path, data, version)
		if err != nil {
			return err
		}
		printStat(st)
	case "delete":
		return conn.Delete(path, version)
	case "exists":
		exists, _, err := conn.Exists(path)
		if err != nil {
			return err
		}
		fmt.Println(strconv.FormatBool(exists))
	case "children":
		children, _, err := conn.Children(path)
		if err != nil {
			return err
		}
		for _, child := range children {
			fmt.Println(child)
		}
	case "stat":
		_, st, err := conn.Exists(path)
		if err != nil {
			return err
		}
		if st == nil {
			return fmt.Errorf("node [%s] does not exist", path)
		}
		printStat(st)
	case "sync":
		_, err := conn.Sync(path)
		return err
	default:
		return fmt.Errorf("unknown operation [%s]", op)
	}
	return nil
}

func printStat(st *handle.Stat) {
	if st == nil {
		return
	}
	fmt.Printf("czxid: %s\n", zxid.ZXID(st.Czxid))
	fmt.Printf("mzxid: %s\n", zxid.ZXID(st.Mzxid))
	fmt.Printf("version: %d\n", st.Version)
	fmt.Printf("cversion: %d\n", st.Cversion)
	fmt.Printf("aversion: %d\n", st.Aversion)
	fmt.Printf("children: %d\n", st.NumChildren)
	if st.EphemeralOwner != 0 {
		fmt.Printf("ephemeral owner: %#x\n", st.EphemeralOwner)
	}
}

func initLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "zkcli").Logger()
}
