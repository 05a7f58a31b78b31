// Command mercadito is a CLI client for the marketplace API.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/andresfq/mercadito/internal/client"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/service"
)

// ---- config/token store ----

type tokenFile struct {
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
	UserType    model.UserType `json:"user_type"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "mercadito")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "mercadito")
}

func tokenPath() string { return filepath.Join(cfgDir(), "token.json") }

func saveToken(tok string, exp time.Time, ut model.UserType) error {
	_ = os.MkdirAll(cfgDir(), 0o700)
	f, err := os.Create(tokenPath())
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(tokenFile{AccessToken: tok, ExpiresAt: exp, UserType: ut})
}

func loadToken() (tokenFile, error) {
	b, err := os.ReadFile(tokenPath())
	if err != nil {
		return tokenFile{}, err
	}
	var tf tokenFile
	if err := json.Unmarshal(b, &tf); err != nil {
		return tokenFile{}, err
	}
	if tf.AccessToken == "" || time.Now().After(tf.ExpiresAt) {
		return tokenFile{}, errors.New("no valid token (login required)")
	}
	return tf, nil
}

// ---- utils ----

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}

func mustUUID(s string) uuid.UUID {
	id, err := uuid.FromString(s)
	if err != nil {
		fail(fmt.Errorf("bad id %q", s))
	}
	return id
}

func authedClient(base string) *client.Client {
	tf, err := loadToken()
	if err != nil {
		fail(err)
	}
	return client.New(base, tf.AccessToken)
}

func usage() {
	fmt.Fprintf(os.Stderr, `mercadito CLI
Usage:
  mercadito -addr URL <cmd> [args]

Commands:
  version
  register    -email <e> -p <password> -type comprador|vendedor [-nombre] [-negocio] [-descripcion]
  login       -email <e> -p <password>             (saves token)
  catalog     [-q text] [-sort newest|price_asc|price_desc|name]
  product     -id <uuid>
  publish     -nombre <n> -precio <cop> [-descripcion] [-imagen file]
  myproducts
  editproduct -id <uuid> -nombre <n> -precio <cop> [-descripcion]
  rmproduct   -id <uuid>
  cart
  add         -id <product-uuid>
  qty         -id <line-uuid> -delta +1|-1
  rmline      -id <line-uuid>
  clearcart
  checkout
  compras
  perfil
  editperfil  [-nombre] [-descripcion]
  browse                                       (interactive)
`)
	os.Exit(2)
}

// ---- main ----

var (
	version   = "dev"
	buildDate = "unknown"
)

// main dispatches subcommands against the HTTP API.
func main() {
	addr := flag.String("addr", "http://localhost:8080", "server base URL")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cmd {

	case "version":
		fmt.Printf("mercadito %s (%s)\n", version, buildDate)

	case "register":
		fs := flag.NewFlagSet("register", flag.ExitOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		ut := fs.String("type", "", "comprador|vendedor")
		nombre := fs.String("nombre", "", "display name")
		negocio := fs.String("negocio", "", "business name (vendedor)")
		descripcion := fs.String("descripcion", "", "bio (comprador)")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *p == "" || *ut == "" {
			fmt.Fprintln(os.Stderr, "need -email, -p and -type")
			os.Exit(1)
		}

		cli := client.New(*addr, "")
		id, err := cli.Register(ctx, service.RegisterInput{
			Email:       *email,
			Password:    *p,
			UserType:    model.UserType(*ut),
			Nombre:      *nombre,
			Negocio:     *negocio,
			Descripcion: *descripcion,
		})
		if err != nil {
			fail(err)
		}
		fmt.Println(id)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "email")
		p := fs.String("p", "", "password")
		_ = fs.Parse(flag.Args()[1:])
		if *email == "" || *p == "" {
			fmt.Fprintln(os.Stderr, "need -email and -p")
			os.Exit(1)
		}

		cli := client.New(*addr, "")
		res, err := cli.Login(ctx, *email, *p)
		if err != nil {
			fail(err)
		}
		if err := saveToken(res.Tokens.AccessToken, res.Tokens.ExpiresAt, res.Profile.UserType); err != nil {
			fail(err)
		}
		fmt.Printf("logged in as %s (%s)\n", res.Profile.Nombre, res.Profile.UserType)

	case "catalog":
		fs := flag.NewFlagSet("catalog", flag.ExitOnError)
		q := fs.String("q", "", "search text")
		sortKey := fs.String("sort", "newest", "ordering")
		_ = fs.Parse(flag.Args()[1:])

		cli := client.New(*addr, "")
		products, err := cli.Catalog(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(filterSort(products, *q, *sortKey))

	case "product":
		fs := flag.NewFlagSet("product", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		_ = fs.Parse(flag.Args()[1:])

		cli := client.New(*addr, "")
		p, err := cli.Product(ctx, mustUUID(*id))
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "publish":
		fs := flag.NewFlagSet("publish", flag.ExitOnError)
		nombre := fs.String("nombre", "", "product name")
		descripcion := fs.String("descripcion", "", "description")
		precio := fs.Int64("precio", -1, "price in COP")
		imagen := fs.String("imagen", "", "image file to upload")
		_ = fs.Parse(flag.Args()[1:])
		if *nombre == "" || *precio < 0 {
			fmt.Fprintln(os.Stderr, "need -nombre and non-negative -precio")
			os.Exit(1)
		}

		cli := authedClient(*addr)
		var imagenURL string
		if *imagen != "" {
			f, err := os.Open(*imagen)
			if err != nil {
				fail(err)
			}
			imagenURL, err = cli.UploadImage(ctx, *imagen, f)
			f.Close()
			if err != nil {
				fail(err)
			}
		}
		p, err := cli.Publish(ctx, service.ProductInput{
			Nombre:      *nombre,
			Descripcion: *descripcion,
			Precio:      *precio,
			ImagenURL:   imagenURL,
		})
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "myproducts":
		products, err := authedClient(*addr).MyProducts(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(products)

	case "editproduct":
		fs := flag.NewFlagSet("editproduct", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		nombre := fs.String("nombre", "", "product name")
		descripcion := fs.String("descripcion", "", "description")
		precio := fs.Int64("precio", -1, "price in COP")
		_ = fs.Parse(flag.Args()[1:])
		if *nombre == "" || *precio < 0 {
			fmt.Fprintln(os.Stderr, "need -nombre and non-negative -precio")
			os.Exit(1)
		}

		p, err := authedClient(*addr).UpdateProduct(ctx, mustUUID(*id), service.ProductInput{
			Nombre:      *nombre,
			Descripcion: *descripcion,
			Precio:      *precio,
		})
		if err != nil {
			fail(err)
		}
		printJSON(p)

	case "rmproduct":
		fs := flag.NewFlagSet("rmproduct", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		_ = fs.Parse(flag.Args()[1:])
		if err := authedClient(*addr).DeleteProduct(ctx, mustUUID(*id)); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "cart":
		view, err := authedClient(*addr).Cart(ctx)
		if err != nil {
			fail(err)
		}
		printCart(view)

	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		id := fs.String("id", "", "product id")
		_ = fs.Parse(flag.Args()[1:])
		line, err := authedClient(*addr).AddToCart(ctx, mustUUID(*id))
		if err != nil {
			fail(err)
		}
		printJSON(line)

	case "qty":
		fs := flag.NewFlagSet("qty", flag.ExitOnError)
		id := fs.String("id", "", "line id")
		delta := fs.Int("delta", 0, "+1 or -1")
		_ = fs.Parse(flag.Args()[1:])
		view, err := authedClient(*addr).ChangeQuantity(ctx, mustUUID(*id), *delta)
		if err != nil {
			fail(err)
		}
		printCart(view)

	case "rmline":
		fs := flag.NewFlagSet("rmline", flag.ExitOnError)
		id := fs.String("id", "", "line id")
		_ = fs.Parse(flag.Args()[1:])
		view, err := authedClient(*addr).RemoveFromCart(ctx, mustUUID(*id))
		if err != nil {
			fail(err)
		}
		printCart(view)

	case "clearcart":
		if err := authedClient(*addr).ClearCart(ctx); err != nil {
			fail(err)
		}
		fmt.Println("ok")

	case "checkout":
		res, err := authedClient(*addr).Checkout(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Printf("compra realizada: %d productos, total $%d COP\n", len(res.Compras), res.Total)

	case "compras":
		purchases, err := authedClient(*addr).Purchases(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(purchases)

	case "perfil":
		prof, err := authedClient(*addr).Profile(ctx)
		if err != nil {
			fail(err)
		}
		printJSON(prof)

	case "editperfil":
		fs := flag.NewFlagSet("editperfil", flag.ExitOnError)
		nombre := fs.String("nombre", "", "display name")
		descripcion := fs.String("descripcion", "", "bio")
		_ = fs.Parse(flag.Args()[1:])
		prof, err := authedClient(*addr).UpdateProfile(ctx, *nombre, *descripcion)
		if err != nil {
			fail(err)
		}
		printJSON(prof)

	case "browse":
		if err := runBrowse(*addr); err != nil {
			fail(err)
		}

	default:
		usage()
	}
}

func printCart(view client.CartView) {
	if view.Count == 0 {
		fmt.Println("carrito vacío")
		return
	}
	for _, l := range view.Lines {
		fmt.Printf("  [%s] %s  x%d  $%d COP\n", l.ID, l.Producto.Nombre, l.Cantidad, l.Subtotal())
	}
	fmt.Printf("total: $%d COP (%d líneas)\n", view.Total, view.Count)
}

func shortID(id uuid.UUID) string {
	return strings.SplitN(id.String(), "-", 2)[0]
}
