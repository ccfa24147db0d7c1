package main

// General API documentation for swaggo. Build with -tags swagger to serve it.
//
// @title           bitnetd API
// @version         1.0
// @description     HTTP API for downloading BitNet models and running quantized inference.
//
// @contact.name   bitnetd maintainers
// @contact.url    https://github.com/your-org/bitnetd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
