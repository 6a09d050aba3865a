// Command kvsd is the key-value store's TCP client.
//
//	kvsd get KEY [--addr IP:PORT]
//	kvsd set KEY VALUE [--addr IP:PORT]
//	kvsd rm KEY [--addr IP:PORT]
//	kvsd -V
//
// --addr connects to the server; default 127.0.0.1:4000. Exit code is 0 on
// success, non-zero on a server error reply, and non-zero for rm against a
// missing key.
package main

import (
	"bufio"
	"fmt"
	"net"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/jassi-singh/kvsd/internal/proto"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", "127.0.0.1:4000", "server address, IP:PORT")
	printVersion := flag.BoolP("version", "V", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println("kvsd", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}

	req, isRm, err := buildRequest(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		usage()
		os.Exit(1)
	}

	reply, err := roundTrip(*addr, req)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	fmt.Println(reply)
	if reply == proto.ReplyNotFound && isRm {
		os.Exit(1)
	}
}

func buildRequest(args []string) (req proto.Request, isRm bool, err error) {
	switch args[0] {
	case "get":
		if len(args) != 2 {
			return proto.Request{}, false, fmt.Errorf("usage: kvsd get KEY")
		}
		return proto.NewGet(args[1]), false, nil
	case "set":
		if len(args) != 3 {
			return proto.Request{}, false, fmt.Errorf("usage: kvsd set KEY VALUE")
		}
		return proto.NewSet(args[1], args[2]), false, nil
	case "rm":
		if len(args) != 2 {
			return proto.Request{}, false, fmt.Errorf("usage: kvsd rm KEY")
		}
		return proto.NewRm(args[1]), true, nil
	default:
		return proto.Request{}, false, fmt.Errorf("unknown command %q", args[0])
	}
}

func roundTrip(addr string, req proto.Request) (string, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer conn.Close()

	line, err := proto.Encode(req)
	if err != nil {
		return "", err
	}
	if _, err := conn.Write(line); err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	return reply[:len(reply)-1], nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: kvsd {get KEY | set KEY VALUE | rm KEY} [--addr IP:PORT]")
}
