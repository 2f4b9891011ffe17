package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/catalog"
	"github.com/janseva/constituency-admin/internal/sidebar"
)

// navcheck answers "would the SPA let this role open these pages" using the
// same access map and guard the frontend uses. Without --api it checks the
// catalog's default map.
func main() {
	api := flag.String("api", os.Getenv("NAVCHECK_API"), "API base URL, e.g. http://localhost:8080")
	token := flag.String("token", os.Getenv("NAVCHECK_TOKEN"), "Bearer token for the access map")
	role := flag.String("role", "", "Role name to check")
	perms := flag.String("perms", "", "Comma-separated permissions held by the viewer")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s --role <role> [--api URL --token T] [--perms a,b] <path>...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *role == "" {
		flag.Usage()
		os.Exit(2)
	}

	cat := catalog.MustDefault()
	client := sidebar.NewClient(*api, cat.DefaultSidebar, nil)
	if *api != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := client.Refresh(ctx, *token); err != nil {
			fmt.Fprintf(os.Stderr, "warning: using default map: %v\n", err)
		}
		cancel()
	}

	viewer := sidebar.Viewer{Role: *role}
	if *perms != "" {
		viewer.Permissions = strings.Split(*perms, ",")
	}
	guard := client.Guard(cat.Navigation)

	paths := flag.Args()
	if len(paths) == 0 {
		for _, item := range guard.Visible(viewer, cat.Navigation) {
			printTree(item, 0)
		}
		return
	}

	denied := 0
	for _, p := range paths {
		verdict := "allow"
		if !guard.Allowed(viewer, p) {
			verdict = "deny"
			denied++
		}
		fmt.Printf("%-5s %s\n", verdict, p)
	}
	if denied > 0 {
		os.Exit(1)
	}
}

func printTree(item sidebar.NavItem, depth int) {
	fmt.Printf("%s%s  %s\n", strings.Repeat("  ", depth), item.Title, item.Path)
	for _, child := range item.Children {
		printTree(child, depth+1)
	}
}
