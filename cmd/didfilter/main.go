// Command didfilter parses a DID metadata filter expression and either
// evaluates it (if it references no keys) or compiles and runs it against
// a backend database, printing the matching (scope, name) pairs.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/k0kubun/pp/v3"
	"golang.org/x/term"

	"github.com/Thysk/rucio/db"
	"github.com/Thysk/rucio/entity"
	"github.com/Thysk/rucio/filter"
	"github.com/Thysk/rucio/filter/compile"
	"github.com/Thysk/rucio/reservedkeys"
	"github.com/Thysk/rucio/util"
)

var version string

type cliOptions struct {
	DbType       string `long:"db-type" description:"Database type: mysql, postgres, mssql, or sqlite" value-name:"type" default:"sqlite"`
	User         string `short:"u" long:"user" description:"Database user name" value-name:"user_name"`
	Password     string `short:"p" long:"password" description:"Database user password, overridden by $DIDFILTER_PWD" value-name:"password"`
	Host         string `short:"h" long:"host" description:"Host to connect to" value-name:"host_name" default:"127.0.0.1"`
	Port         uint   `short:"P" long:"port" description:"Port used for the connection" value-name:"port_num"`
	DbName       string `short:"d" long:"db-name" description:"Database name (or file path for sqlite)" value-name:"db_name"`
	Prompt       bool   `long:"password-prompt" description:"Force password prompt"`
	StrictCoerce bool   `long:"strict-coerce" description:"Reject reserved-key values that don't coerce to the declared type" default:"true"`
	ReservedKeys string `long:"reserved-keys" description:"YAML file overriding the reserved-key type table" value-name:"path"`
	Explain      bool   `long:"explain" description:"Print the normalized filter and compiled query instead of running it"`
	Help         bool   `long:"help" description:"Show this help"`
	Version      bool   `long:"version" description:"Show this version"`
}

func parseOptions(args []string) (cliOptions, string) {
	var opts cliOptions
	parser := flags.NewParser(&opts, flags.None)
	parser.Usage = "[options] 'filter expression'"
	args, err := parser.ParseArgs(args)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Help {
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}
	if opts.Version {
		fmt.Println(version)
		os.Exit(0)
	}
	if len(args) != 1 {
		fmt.Print("Exactly one filter expression must be given!\n\n")
		parser.WriteHelp(os.Stdout)
		os.Exit(1)
	}

	password, ok := os.LookupEnv("DIDFILTER_PWD")
	if !ok {
		password = opts.Password
	}
	if opts.Prompt {
		fmt.Print("Enter Password: ")
		pass, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			log.Fatal(err)
		}
		password = string(pass)
		fmt.Println()
	}
	opts.Password = password

	return opts, args[0]
}

func main() {
	util.InitSlog()
	opts, source := parseOptions(os.Args[1:])

	reservedKeys := entity.ReservedKeyTypes()
	if opts.ReservedKeys != "" {
		loaded, err := reservedkeys.LoadConfig(opts.ReservedKeys)
		if err != nil {
			log.Fatal(err)
		}
		reservedKeys = loaded
	}

	eng, err := filter.New(source, filter.Options{
		ReservedKeys: reservedKeys,
		StrictCoerce: opts.StrictCoerce,
	})
	if err != nil {
		slog.Error("failed to parse filter", "error", err)
		log.Fatal(err)
	}

	if opts.Explain {
		pp.Println(eng.Filters())
	}

	if isLiteralOnly(eng) {
		ok, err := eng.Evaluate()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(ok)
		return
	}

	conn, err := db.Open(db.Config{
		DbType:   opts.DbType,
		Host:     opts.Host,
		Port:     int(opts.Port),
		User:     opts.User,
		Password: opts.Password,
		DbName:   opts.DbName,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	query, err := eng.CreateQuery(conn.Dialect, entity.DIDs, nil, compile.Attribute{})
	if err != nil {
		log.Fatal(err)
	}

	if opts.Explain {
		pp.Println(query)
		return
	}

	plugin := db.NewSQLPlugin(conn)
	dids, err := plugin.ListDIDs(context.Background(), query)
	if err != nil {
		log.Fatal(err)
	}
	for _, d := range dids {
		fmt.Printf("%s:%s\n", d.Scope, d.Name)
	}
}

// isLiteralOnly reports whether every condition in the filter is literal
// (spec §4.7: evaluable directly, without a backend).
func isLiteralOnly(eng *filter.Engine) bool {
	for _, group := range eng.Filters() {
		for _, c := range group {
			if !c.IsLiteral() {
				return false
			}
		}
	}
	return true
}
