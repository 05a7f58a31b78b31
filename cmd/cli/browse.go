package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/andresfq/mercadito/internal/catalog"
	"github.com/andresfq/mercadito/internal/client"
	"github.com/andresfq/mercadito/internal/errs"
	"github.com/andresfq/mercadito/internal/model"
	"github.com/andresfq/mercadito/internal/nav"
	"github.com/andresfq/mercadito/internal/service"
)

// filterSort applies local search and ordering to a fetched catalog.
func filterSort(products []model.Product, q, key string) []model.Product {
	v := catalog.NewView()
	v.Load(products)
	v.Search(q)
	if err := v.SortBy(catalog.SortKey(key)); err != nil {
		fail(err)
	}
	return v.Products()
}

// browseState holds what the interactive session has fetched so far.
type browseState struct {
	cli  *client.Client
	view *catalog.View
	in   *bufio.Scanner

	userType model.UserType
	listed   []model.Product  // last rendered list, for "ver <n>"
	cart     []model.CartLine // last rendered cart, for line commands
	selected *model.Product   // target of the product-detail section
}

// runBrowse is the interactive section loop: one visible section at a time,
// navigation by token, unknown tokens land on home.
func runBrowse(addr string) error {
	st := &browseState{
		cli:  client.New(addr, ""),
		view: catalog.NewView(),
		in:   bufio.NewScanner(os.Stdin),
	}
	if tf, err := loadToken(); err == nil {
		st.cli.SetToken(tf.AccessToken)
		st.userType = tf.UserType
	}

	ctrl := newBrowseController(st)
	if err := ctrl.Show(nav.Home); err != nil {
		return err
	}

	for {
		fmt.Printf("[%s] > ", ctrl.Current())
		if !st.in.Scan() {
			return st.in.Err()
		}
		quit, err := st.dispatch(ctrl, st.in.Text())
		if quit {
			return nil
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			// expired or missing session lands on the login section
			if errors.Is(err, errs.ErrUnauthorized) {
				_ = ctrl.Show("login")
			}
		}
	}
}

// newBrowseController registers every client section with its load hook.
func newBrowseController(st *browseState) *nav.Controller {
	ctrl := nav.NewController()
	_ = ctrl.Register(nav.Home, st.showHome)
	_ = ctrl.Register("products", st.showProducts)
	_ = ctrl.Register("product-detail", st.showProductDetail)
	_ = ctrl.Register("cart", st.showCart)
	_ = ctrl.Register("login", st.showLogin)
	_ = ctrl.Register("register", st.showRegister)
	_ = ctrl.Register("profile-vendedor", st.showProfileVendedor)
	_ = ctrl.Register("profile-comprador", st.showProfileComprador)
	return ctrl
}

// dispatch runs one input line against the controller. Section tokens
// navigate; everything else is a section-local command.
func (st *browseState) dispatch(ctrl *nav.Controller, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "salir", "exit", "q":
		return true, nil
	case "ir", "go":
		return false, ctrl.Show(arg)
	case "perfil":
		// route by role, like the SPA's profile link
		return false, ctrl.Show(st.profileSection())
	case "buscar":
		st.view.Search(arg)
		return false, ctrl.Show("products")
	case "orden":
		if err := st.view.SortBy(catalog.SortKey(arg)); err != nil {
			return false, err
		}
		return false, ctrl.Show("products")
	case "ver":
		p, err := st.pickProduct(arg)
		if err != nil {
			return false, err
		}
		st.selected = p
		return false, ctrl.Show("product-detail")
	case "agregar":
		return false, st.addToCart(arg)
	case "mas":
		return false, st.changeQuantity(arg, +1)
	case "menos":
		return false, st.changeQuantity(arg, -1)
	case "quitar":
		return false, st.removeLine(arg)
	case "vaciar":
		return false, st.clearCart()
	case "pagar":
		done, err := st.checkout()
		if err != nil {
			return false, err
		}
		if done {
			// compra confirmada: el flujo termina en el perfil del comprador
			return false, ctrl.Show("profile-comprador")
		}
		return false, nil
	case "ayuda", "help":
		printBrowseHelp()
		return false, nil
	default:
		// bare section tokens navigate too
		return false, ctrl.Show(cmd)
	}
}

func (st *browseState) profileSection() string {
	if st.userType == model.UserTypeVendedor {
		return "profile-vendedor"
	}
	return "profile-comprador"
}

func printBrowseHelp() {
	fmt.Print(`comandos:
  ir <seccion>      products | product-detail | cart | login | register |
                    profile-vendedor | profile-comprador | home
  perfil            abre el perfil según tu tipo de usuario
  buscar <texto>    filtra el catálogo (vacío lo restaura)
  orden <clave>     newest | price_asc | price_desc | name
  ver <n>           detalle del producto n de la última lista
  agregar <n>       agrega el producto n al carrito
  mas <n>           suma 1 a la línea n del carrito
  menos <n>         resta 1 a la línea n (en 1 la elimina)
  quitar <n>        elimina la línea n del carrito
  vaciar            vacía el carrito
  pagar             finaliza la compra
  salir
`)
}

func browseCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 15*time.Second)
}

func (st *browseState) showHome() error {
	fmt.Println("mercadito — escribe 'ayuda' para ver los comandos")
	return nil
}

func (st *browseState) showProducts() error {
	ctx, cancel := browseCtx()
	defer cancel()

	products, err := st.cli.Catalog(ctx)
	if err != nil {
		return err
	}
	st.view.Load(products)
	st.listed = st.view.Products()

	if q := st.view.Query(); q != "" {
		fmt.Printf("filtro: %q, orden: %s\n", q, st.view.Key())
	}
	if len(st.listed) == 0 {
		fmt.Println("no hay productos")
		return nil
	}
	for i, p := range st.listed {
		fmt.Printf("%3d. %-30s $%d COP  (%s)\n", i+1, p.Nombre, p.Precio, p.Vendedor.DisplayName())
	}
	return nil
}

func pickIndex(arg string, n int) (int, error) {
	var i int
	if _, err := fmt.Sscanf(arg, "%d", &i); err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("usa un número entre 1 y %d", n)
	}
	return i - 1, nil
}

func (st *browseState) pickProduct(arg string) (*model.Product, error) {
	i, err := pickIndex(arg, len(st.listed))
	if err != nil {
		return nil, err
	}
	return &st.listed[i], nil
}

func (st *browseState) pickLine(arg string) (*model.CartLine, error) {
	i, err := pickIndex(arg, len(st.cart))
	if err != nil {
		return nil, err
	}
	return &st.cart[i], nil
}

func (st *browseState) showProductDetail() error {
	if st.selected == nil {
		fmt.Println("selecciona un producto con 'ver <n>' desde products")
		return nil
	}
	ctx, cancel := browseCtx()
	defer cancel()

	full, err := st.cli.Product(ctx, st.selected.ID)
	if err != nil {
		return err
	}
	fmt.Printf("%s — $%d COP\n", full.Nombre, full.Precio)
	if full.Descripcion != "" {
		fmt.Println(full.Descripcion)
	}
	fmt.Printf("vende: %s", full.Vendedor.DisplayName())
	if full.Vendedor.Email != "" {
		fmt.Printf(" <%s>", full.Vendedor.Email)
	}
	fmt.Println()
	return nil
}

func (st *browseState) addToCart(arg string) error {
	p, err := st.pickProduct(arg)
	if err != nil {
		return err
	}
	ctx, cancel := browseCtx()
	defer cancel()

	line, err := st.cli.AddToCart(ctx, p.ID)
	if err != nil {
		return err
	}
	fmt.Printf("agregado: %s x%d\n", line.Producto.Nombre, line.Cantidad)
	return nil
}

func (st *browseState) changeQuantity(arg string, delta int) error {
	l, err := st.pickLine(arg)
	if err != nil {
		return err
	}
	ctx, cancel := browseCtx()
	defer cancel()

	view, err := st.cli.ChangeQuantity(ctx, l.ID, delta)
	if err != nil {
		return err
	}
	st.renderCart(view)
	return nil
}

func (st *browseState) removeLine(arg string) error {
	l, err := st.pickLine(arg)
	if err != nil {
		return err
	}
	ctx, cancel := browseCtx()
	defer cancel()

	view, err := st.cli.RemoveFromCart(ctx, l.ID)
	if err != nil {
		return err
	}
	st.renderCart(view)
	return nil
}

func (st *browseState) clearCart() error {
	ctx, cancel := browseCtx()
	defer cancel()

	if err := st.cli.ClearCart(ctx); err != nil {
		return err
	}
	st.cart = nil
	fmt.Println("carrito vacío")
	return nil
}

// checkout finalizes the purchase. Returns false without error when the cart
// was empty, so the caller stays on the current section.
func (st *browseState) checkout() (bool, error) {
	ctx, cancel := browseCtx()
	defer cancel()

	res, err := st.cli.Checkout(ctx)
	if err != nil {
		if errors.Is(err, errs.ErrEmptyCart) {
			fmt.Println("el carrito está vacío")
			return false, nil
		}
		return false, err
	}
	st.cart = nil
	fmt.Printf("¡compra realizada exitosamente! %d productos, total $%d COP\n",
		len(res.Compras), res.Total)
	return true, nil
}

func (st *browseState) renderCart(view client.CartView) {
	st.cart = view.Lines
	printCart(view)
}

func (st *browseState) showCart() error {
	ctx, cancel := browseCtx()
	defer cancel()

	view, err := st.cli.Cart(ctx)
	if err != nil {
		return err
	}
	st.renderCart(view)
	return nil
}

// prompt reads one line for the login/register forms.
func (st *browseState) prompt(label string) string {
	fmt.Printf("%s: ", label)
	if !st.in.Scan() {
		return ""
	}
	return strings.TrimSpace(st.in.Text())
}

func (st *browseState) showLogin() error {
	email := st.prompt("email")
	password := st.prompt("contraseña")
	if email == "" || password == "" {
		return errors.New("email y contraseña son obligatorios")
	}

	ctx, cancel := browseCtx()
	defer cancel()

	res, err := st.cli.Login(ctx, email, password)
	if err != nil {
		return err
	}
	st.userType = res.Profile.UserType
	if err := saveToken(res.Tokens.AccessToken, res.Tokens.ExpiresAt, res.Profile.UserType); err != nil {
		return err
	}
	fmt.Printf("sesión iniciada: %s (%s)\n", res.Profile.Nombre, res.Profile.UserType)
	return nil
}

func (st *browseState) showRegister() error {
	in := model.UserType(st.prompt("tipo (comprador|vendedor)"))
	email := st.prompt("email")
	password := st.prompt("contraseña")
	nombre := st.prompt("nombre")

	reg := struct {
		negocio     string
		descripcion string
	}{}
	switch in {
	case model.UserTypeVendedor:
		reg.negocio = st.prompt("negocio")
	case model.UserTypeComprador:
		reg.descripcion = st.prompt("descripción")
	}

	ctx, cancel := browseCtx()
	defer cancel()

	id, err := st.cli.Register(ctx, service.RegisterInput{
		Email:       email,
		Password:    password,
		UserType:    in,
		Nombre:      nombre,
		Negocio:     reg.negocio,
		Descripcion: reg.descripcion,
	})
	if err != nil {
		return err
	}
	fmt.Println("cuenta creada:", id)
	return nil
}

func (st *browseState) showProfileVendedor() error {
	ctx, cancel := browseCtx()
	defer cancel()

	prof, err := st.cli.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", prof.Nombre, prof.UserType)
	if prof.Negocio != "" {
		fmt.Println("negocio:", prof.Negocio)
	}
	fmt.Printf("publicados: %d, vendidos: %d\n", prof.ProductosPublicados, prof.ProductosVendidos)

	products, err := st.cli.MyProducts(ctx)
	if err != nil {
		return err
	}
	for _, p := range products {
		fmt.Printf("  %s  $%d COP\n", p.Nombre, p.Precio)
	}
	return nil
}

func (st *browseState) showProfileComprador() error {
	ctx, cancel := browseCtx()
	defer cancel()

	prof, err := st.cli.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", prof.Nombre, prof.UserType)
	if prof.Descripcion != "" {
		fmt.Println(prof.Descripcion)
	}
	fmt.Printf("objetos comprados: %d\n", prof.ObjetosComprados)

	purchases, err := st.cli.Purchases(ctx)
	if err != nil {
		return err
	}
	for _, p := range purchases {
		fmt.Printf("  %s  %s x%d  $%d COP  (%s)\n",
			p.FechaCompra.Format("2006-01-02"), p.Producto.Nombre, p.Cantidad, p.Total, shortID(p.ID))
	}
	return nil
}
