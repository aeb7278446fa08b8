package main

import (
	"fmt"
	"net/http"
)

func main() {
	http.HandleFunc("/api/v1/resource", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "upstream ok: %s\n", r.Header.Get("Authorization"))
		fmt.Println("Log: requisição chegou no upstream em /api/v1/resource")
	})
	fmt.Println("Upstream rodando em http://localhost:8082")
	err := http.ListenAndServe(":8082", nil)
	if err != nil {
		fmt.Printf("Erro ao subir o servidor: %s\n", err)
	}
}
