package main

var (
	AboutMe = `Soy Rest: desarrollador y entusiasta de la seguridad. Me gusta entender como funcionan
	las cosas por dentro, romperlas en un laboratorio y volver a montarlas mejor. La mayoria de mis
	proyectos empiezan como una idea pequena y acaban siendo una excusa para aprender algo nuevo,
	ya sea un lenguaje, una herramienta o un protocolo que nadie documento bien.`

	ProjectOne = `Escaner de puertos concurrente escrito en Go, con deteccion de servicios por banner
	y salida en JSON para integrarlo en pipelines de CI.`

	ProjectTwo = `Laboratorio de CTF autoalojado: retos web y de criptografia empaquetados en
	contenedores, con marcador en tiempo real.`

	ProjectThree = `Proxy de depuracion HTTP para terminal que captura, filtra y repite peticiones,
	pensado para auditar APIs sin salir de la consola.`

	ProjectFour = `Este portfolio: servidor en Go con Gin, sesiones de pagina en el servidor,
	notificaciones por websocket y fondo de lluvia matrix, tambien disponible en la terminal.`
)

// Projects are listed in display order on the home page.
var Projects = []struct {
	Title       string
	Description string
	Tags        []string
}{
	{"portscan", ProjectOne, []string{"Go", "Networking"}},
	{"ctf-lab", ProjectTwo, []string{"Docker", "Security"}},
	{"replay", ProjectThree, []string{"Go", "HTTP"}},
	{"rest-portfolio", ProjectFour, []string{"Go", "Gin", "WebSocket"}},
}
